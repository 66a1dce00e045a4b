// Package keyvalue finds and rewrites quoted assignments such as
// VERSION = "1.2.3" in source files, so a new version can be written into
// podspecs, Swift sources and the like.
package keyvalue

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var ErrKeyNotFound = errors.New("keyvalue: key not found")

// KeyValue matches the value quoted after "<key> =".
type KeyValue struct {
	key string
	re  *regexp.Regexp
}

func New(key string) *KeyValue {
	return &KeyValue{
		key: key,
		re:  regexp.MustCompile(`(` + regexp.QuoteMeta(key) + `\s*=\s*["'])([\w.-]*)`),
	}
}

func (kv *KeyValue) Key() string { return kv.key }

// Match returns the first value assigned to the key in contents.
func (kv *KeyValue) Match(contents string) (string, bool) {
	m := kv.re.FindStringSubmatch(contents)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// Replace sets every value assigned to the key in contents to value.
func (kv *KeyValue) Replace(contents, value string) string {
	return kv.re.ReplaceAllStringFunc(contents, func(m string) string {
		sub := kv.re.FindStringSubmatch(m)
		return sub[1] + value
	})
}

// ReplaceFile rewrites the file at path with the key set to value. The file
// is left untouched, and ErrKeyNotFound returned, if the key isn't assigned
// in it.
func (kv *KeyValue) ReplaceFile(path, value string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	contents := string(b)
	if _, ok := kv.Match(contents); !ok {
		return fmt.Errorf("%w: %s has no explicit value for %s", ErrKeyNotFound, path, kv.key)
	}

	out := kv.Replace(contents, value)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return os.WriteFile(path, []byte(out), info.Mode().Perm())
}
