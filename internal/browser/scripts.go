package browser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	readyStateComplete = `document.readyState === "complete"`
	scrollToBottomJS   = `window.scrollTo(0, document.body.scrollHeight)`
)

// clickTextJS clicks the first visible element whose text matches. An exact
// match is preferred over a substring match so "Manual" does not hit a
// container that merely mentions it. Evaluates to true when something was
// clicked.
const clickTextJS = `((needle) => {
  const candidates = Array.from(document.querySelectorAll(
    'a, button, label, span, li, h3, [role="button"], [role="checkbox"], input[type="checkbox"]'));
  const visible = (el) => {
    const r = el.getBoundingClientRect();
    return r.width > 0 && r.height > 0;
  };
  const text = (el) => (el.innerText || el.value || '').trim();
  const pick = candidates.find((el) => visible(el) && text(el) === needle) ||
    candidates.find((el) => visible(el) && text(el).includes(needle));
  if (!pick) {
    return false;
  }
  pick.scrollIntoView({ block: 'center' });
  pick.click();
  return true;
})(%s)`

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return string(b)
}

func countJS(selector string) string {
	return fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(selector))
}

func clickTextScript(text string) string {
	return fmt.Sprintf(clickTextJS, jsString(text))
}
