// Package obfuscator wraps the Prometheus Lua obfuscator CLI. Prometheus
// itself is treated as an opaque external tool; this package only manages
// session files and the subprocess.
package obfuscator

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/config"
)

// Presets understood by Prometheus. Keys are the slash-command values.
var Presets = map[string]string{
	"weak":   "Weak",
	"medium": "Medium",
	"strong": "Strong",
	"minify": "Minify",
}

var (
	ErrEmptyInput    = errors.New("input file is empty")
	ErrBadPreset     = errors.New("unknown obfuscation preset")
	ErrTimeout       = errors.New("obfuscation timed out")
	ErrLuaNotFound   = errors.New("lua interpreter not found")
	ErrPrometheusEnv = errors.New("prometheus is not properly installed")
)

type Obfuscator struct {
	Config config.Obfuscator
	Logger *zap.Logger
}

// wrapper script template; paths use forward slashes so the same script
// works under a Windows lua build too.
const wrapperTemplate = `-- obfuscation wrapper
package.path = "%[1]s/?.lua;" .. package.path

local ok, Prometheus = pcall(require, "prometheus")
if not ok then
	io.stderr:write("ERROR: Failed to load Prometheus: " .. tostring(Prometheus))
	os.exit(1)
end

Prometheus.Logger.logLevel = Prometheus.Logger.LogLevel.Error

local inputFile = io.open("%[2]s", "r")
if not inputFile then
	io.stderr:write("ERROR: Could not open input file")
	os.exit(1)
end
local code = inputFile:read("*all")
inputFile:close()

local presetConfig = Prometheus.Presets["%[4]s"]
if not presetConfig then
	io.stderr:write("ERROR: Invalid preset: %[4]s")
	os.exit(1)
end

local pipeline = Prometheus.Pipeline:fromConfig(presetConfig)

local ok, result = pcall(function()
	return pipeline:apply(code)
end)
if not ok then
	io.stderr:write("ERROR: Obfuscation failed: " .. tostring(result))
	os.exit(1)
end

local outputFile = io.open("%[3]s", "w")
if not outputFile then
	io.stderr:write("ERROR: Could not create output file")
	os.exit(1)
end
outputFile:write(result)
outputFile:close()

print("SUCCESS")
`

// Run obfuscates src with the given preset and returns the obfuscated
// source plus how long the subprocess took. Session files are always
// cleaned up, even on failure.
func (o *Obfuscator) Run(ctx context.Context, src []byte, preset string) ([]byte, time.Duration, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, 0, ErrEmptyInput
	}

	presetName, ok := Presets[preset]

	if !ok {
		return nil, 0, ErrBadPreset
	}

	if err := os.MkdirAll(o.Config.TempDir, 0755); err != nil {
		return nil, 0, err
	}

	session := randomSessionID()

	inputPath := filepath.Join(o.Config.TempDir, "input_"+session+".lua")
	outputPath := filepath.Join(o.Config.TempDir, "output_"+session+".lua")
	wrapperPath := filepath.Join(o.Config.TempDir, "wrapper_"+session+".lua")

	defer func() {
		for _, f := range []string{inputPath, outputPath, wrapperPath} {
			if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
				o.Logger.Warn("Failed to clean up session file", zap.Error(err), zap.String("file", f))
			}
		}
	}()

	if err := os.WriteFile(inputPath, src, 0644); err != nil {
		return nil, 0, err
	}

	wrapper := fmt.Sprintf(
		wrapperTemplate,
		slashed(o.Config.PrometheusPath),
		slashed(inputPath),
		slashed(outputPath),
		presetName,
	)

	if err := os.WriteFile(wrapperPath, []byte(wrapper), 0644); err != nil {
		return nil, 0, err
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(o.Config.TimeoutSeconds)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, o.Config.LuaPath, wrapperPath)
	cmd.Dir = o.Config.PrometheusPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, elapsed, ErrTimeout
	}

	if err != nil {
		return nil, elapsed, classify(err, stderr.String())
	}

	if !strings.Contains(stdout.String(), "SUCCESS") {
		return nil, elapsed, classify(nil, stderr.String())
	}

	out, err := os.ReadFile(outputPath)

	if err != nil {
		return nil, elapsed, fmt.Errorf("output file was not created: %w", err)
	}

	return out, elapsed, nil
}

func classify(err error, stderr string) error {
	switch {
	case strings.Contains(stderr, "Failed to load Prometheus"):
		return ErrPrometheusEnv
	case errors.Is(err, exec.ErrNotFound):
		return ErrLuaNotFound
	case stderr != "":
		return errors.New(strings.TrimPrefix(strings.TrimSpace(stderr), "ERROR: "))
	case err != nil:
		return err
	default:
		return errors.New("obfuscation produced no output")
	}
}

func slashed(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func randomSessionID() string {
	buf := make([]byte, 8)

	if _, err := rand.Read(buf); err != nil {
		panic("obfuscator: " + err.Error())
	}

	return hex.EncodeToString(buf)
}
