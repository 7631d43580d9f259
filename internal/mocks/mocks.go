// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Flow() config.FlowConfig {
	args := m.Called()
	return args.Get(0).(config.FlowConfig)
}

func (m *MockConfig) Artifacts() config.ArtifactsConfig {
	args := m.Called()
	return args.Get(0).(config.ArtifactsConfig)
}

func (m *MockConfig) Report() config.ReportConfig {
	args := m.Called()
	return args.Get(0).(config.ReportConfig)
}

// --- Setters ---

func (m *MockConfig) SetSearchTerm(s string)           { m.Called(s) }
func (m *MockConfig) SetTransmission(s string)         { m.Called(s) }
func (m *MockConfig) SetBrowserHeadless(b bool)        { m.Called(b) }
func (m *MockConfig) SetBrowserSlowMo(d time.Duration) { m.Called(d) }
func (m *MockConfig) SetReportFile(s string)           { m.Called(s) }
func (m *MockConfig) SetReportFormats(f []string)      { m.Called(f) }

// -- Driver Mock --

// MockDriver implements schemas.Driver for page object and flow tests.
type MockDriver struct {
	mock.Mock
}

var _ schemas.Driver = (*MockDriver)(nil)

func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

func (m *MockDriver) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}
func (m *MockDriver) Click(ctx context.Context, selector string) error {
	return m.Called(ctx, selector).Error(0)
}
func (m *MockDriver) Fill(ctx context.Context, selector, text string) error {
	return m.Called(ctx, selector, text).Error(0)
}
func (m *MockDriver) WaitForVisible(ctx context.Context, selector string, timeout time.Duration) bool {
	return m.Called(ctx, selector, timeout).Bool(0)
}
func (m *MockDriver) TextContent(ctx context.Context, selector string) (string, error) {
	args := m.Called(ctx, selector)
	return args.String(0), args.Error(1)
}
func (m *MockDriver) LocatorCount(ctx context.Context, selector string) (int, error) {
	args := m.Called(ctx, selector)
	return args.Int(0), args.Error(1)
}
func (m *MockDriver) OuterHTML(ctx context.Context, selector string) (string, error) {
	args := m.Called(ctx, selector)
	return args.String(0), args.Error(1)
}
func (m *MockDriver) ClickText(ctx context.Context, text string) (bool, error) {
	args := m.Called(ctx, text)
	return args.Bool(0), args.Error(1)
}
func (m *MockDriver) ScrollToBottom(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockDriver) WaitForLoad(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockDriver) Close(ctx context.Context) error          { return m.Called(ctx).Error(0) }
func (m *MockDriver) Title(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *MockDriver) URL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *MockDriver) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// -- Browser Manager Mock --

// MockBrowserManager implements schemas.BrowserManager.
type MockBrowserManager struct {
	mock.Mock
}

var _ schemas.BrowserManager = (*MockBrowserManager)(nil)

func (m *MockBrowserManager) NewPage(ctx context.Context) (schemas.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(schemas.Driver), args.Error(1)
}

func (m *MockBrowserManager) Shutdown(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
