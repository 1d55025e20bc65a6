/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureStdout runs fn with os.Stdout redirected and returns everything
// fn wrote to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	w.Close()
	os.Stdout = old
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Failed to read captured stdout: %v", err)
	}
	return string(data)
}

func TestUsageErrorKeepsStdoutClean(t *testing.T) {
	// A non-numeric --time fails flag parsing before the command runs.
	// The error and usage text belong on stderr; stdout must stay empty
	// so callers can always parse it as the metric value.
	var diag bytes.Buffer
	rootCmd.SetOut(&diag)
	rootCmd.SetErr(&diag)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)
	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"metric", t.TempDir(), "pattern_factor", "--time", "abc"})

	var err error
	out := captureStdout(t, func() { err = rootCmd.Execute() })
	assert.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, diag.String(), "invalid argument")
}
