package utils

import (
	"fmt"
	ct "github.com/daviddengcn/go-colortext"
	"io"
	"os"
	"strings"
)

func PrintBlue(out io.Writer, content string) {
	ct.ChangeColor(ct.Blue, false, ct.None, false)
	_, _ = fmt.Fprint(out, content)
	ct.ResetColor()
}

func PrintYellow(out io.Writer, content string) {
	ct.ChangeColor(ct.Yellow, false, ct.None, false)
	_, _ = fmt.Fprint(out, content)
	ct.ResetColor()
}

func PrintWarning(out io.Writer, name string) {
	ct.ChangeColor(ct.Red, false, ct.None, false)
	_, _ = fmt.Fprint(out, name)
	ct.ResetColor()
}

func PrintString(out io.Writer, name string) {
	ct.ChangeColor(ct.Green, false, ct.None, false)
	_, _ = fmt.Fprint(out, name)
	ct.ResetColor()
}

func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SplitCSKV splits a comma separated key=value list ("reg=example.org,user=bob")
// into a map. Values may be empty, keys may not repeat meaningfully (last wins).
func SplitCSKV(s string) (map[string]string, error) {
	result := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		if pair == "" {
			continue
		}
		k, v, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		if k == "" {
			return nil, fmt.Errorf("empty key in %q", pair)
		}
		result[k] = v
	}
	return result, nil
}
