package results_test

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/ebay-flow/internal/results"
)

func jsonEncode(w io.Writer, s results.Snapshot) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(s)
}
