package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	jsoniter "github.com/json-iterator/go"

	mdmath "github.com/alnah/go-mdmath"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Math     mathInfo   `json:"math"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// mathInfo holds the typesetting engine self-test result.
type mathInfo struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorDeps are the system lookups runDoctor uses, replaced in tests.
type doctorDeps struct {
	getenv     func(string) string
	lookPath   func() (string, bool)
	stat       func(string) (os.FileInfo, error)
	version    func(path string) (string, error)
	renderMath func() error
	tempDir    func() string
}

func defaultDoctorDeps(getenv func(string) string) doctorDeps {
	return doctorDeps{
		getenv:     getenv,
		lookPath:   launcher.LookPath,
		stat:       os.Stat,
		version:    chromeVersion,
		renderMath: renderMathSample,
		tempDir:    os.TempDir,
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := slices.Contains(args, "--json")

	result := runDoctor(defaultDoctorDeps(env.Getenv))

	if jsonOutput {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(deps doctorDeps) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  deps.getenv("ROD_NO_SANDBOX"),
			BrowserBin: deps.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkMath(result, deps)
	checkChrome(result, deps)
	checkEnvironment(result, deps)
	checkSystem(result, deps)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkMath typesets a sample expression. A broken engine is an error:
// every expression would fall back to its source text.
func checkMath(result *doctorResult, deps doctorDeps) {
	if err := deps.renderMath(); err != nil {
		result.Math.Error = err.Error()
		result.Errors = append(result.Errors, "Math typesetting failed: "+err.Error())
		return
	}
	result.Math.OK = true
}

func renderMathSample() error {
	conv, err := mdmath.NewConverter(mdmath.WithCacheSize(0))
	if err != nil {
		return err
	}
	defer conv.Close()

	html, err := conv.RenderFragment(context.Background(), `$x^2$`)
	if err != nil {
		return err
	}
	if !strings.Contains(html, "<math") {
		return fmt.Errorf("sample rendered without MathML: %q", html)
	}
	return nil
}

// checkChrome detects Chrome/Chromium. Missing Chrome is only a warning:
// HTML output does not need it.
func checkChrome(result *doctorResult, deps doctorDeps) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = deps.lookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found. PDF export needs Chrome or ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := deps.stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	if v, err := deps.version(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

func chromeVersion(path string) (string, error) {
	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path comes from launcher lookup or ROD_BROWSER_BIN
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, deps doctorDeps) {
	result.Env.Container, result.Env.ContainerHint = isContainer(deps)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if deps.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(deps doctorDeps) (bool, string) {
	if deps.getenv("MDMATH_CONTAINER") == "1" {
		return true, "MDMATH_CONTAINER=1"
	}
	if _, err := deps.stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := deps.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if deps.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for PDF rendering is writable.
func checkSystem(result *doctorResult, deps doctorDeps) {
	tmpDir := deps.tempDir()
	testFile := filepath.Join(tmpDir, "mdmath-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdmath doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Math")
	if r.Math.OK {
		fmt.Fprintln(w, "  [OK] Typesetting engine")
	} else {
		fmt.Fprintf(w, "  [ERROR] Typesetting engine: %s\n", r.Math.Error)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium (PDF only)")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", e)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: READY")
	case statusWarnings:
		fmt.Fprintln(w, "Status: READY (with warnings)")
	default:
		fmt.Fprintln(w, "Status: NOT READY")
	}
}
