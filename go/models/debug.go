package models

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os/exec"
	"regexp"
	"strings"
)

var demangleRe = regexp.MustCompile(`^[^(]+`)

// Demangle runs C++ names through c++filt. Mach-O symbols carry an extra
// leading underscore, so "__Z" names are trimmed first.
func Demangle(name string) string {
	if strings.HasPrefix(name, "__Z") {
		name = name[1:]
	} else if !strings.HasPrefix(name, "_Z") {
		return name
	}
	cmd := exec.Command("c++filt", "-n")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return name
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return name
	}
	if err = cmd.Start(); err != nil {
		return name
	}
	stdin.Write([]byte(name + "\n"))
	stdin.Close()
	out, err := ioutil.ReadAll(stdout)
	cmd.Wait()
	out = bytes.Trim(out, "\t\r\n ")
	if err != nil || len(out) == 0 {
		return name
	}
	if m := demangleRe.Find(out); m != nil {
		out = m
	}
	return string(out)
}

// Repr quotes p with unprintable bytes as \x escapes. strsize > 0 caps the
// quoted text, dropping whole bytes from the end and marking the cut with
// "...".
func Repr(p []byte, strsize int) string {
	parts := make([]string, len(p))
	total := 0
	for i, b := range p {
		if isPrint(b) {
			parts[i] = string(b)
		} else {
			parts[i] = fmt.Sprintf("\\x%02x", b)
		}
		total += len(parts[i])
	}
	if strsize <= 0 || total <= strsize {
		return `"` + strings.Join(parts, "") + `"`
	}
	for len(parts) > 1 && total > strsize-3 {
		total -= len(parts[len(parts)-1])
		parts = parts[:len(parts)-1]
	}
	return `"` + strings.Join(parts, "") + `"...`
}

func isPrint(b byte) bool { return b >= 0x20 && b <= 0x7e }
