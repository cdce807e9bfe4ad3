//go:build blackbox

package blackbox

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// writeCandlesCSV writes one daily bar per close, starting 2024-01-02.
func writeCandlesCSV(t *testing.T, path, instrument string, closes []float64) {
	t.Helper()

	var b strings.Builder
	b.WriteString("time,instrument,open,high,low,close,volume\n")
	for i, c := range closes {
		fmt.Fprintf(&b, "2024-01-%02dT00:00:00Z,%s,%g,%g,%g,%g,1000\n", 2+i, instrument, c, c, c, c)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}
