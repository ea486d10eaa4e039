//go:build ignore

// build.go - SaaSPulse Build System
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, report, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "saaspulse"

var (
	distDir = "dist"

	// key = directory under cmd/, value = output binary name
	executables = map[string]string{
		"web":    "saaspulse",
		"report": "saaspulse-report",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorYellow, colorCyan = "", "", "", "", ""
	}

	fmt.Printf("%s=== SaaSPulse Build System ===%s\n", colorCyan, colorReset)
	start := time.Now()

	var err error
	switch *target {
	case "all":
		err = buildAll(*verbose)
	case "web", "report":
		err = buildExecutable(*target, *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = clean(*verbose)
	case "release":
		err = release(*verbose)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(start).Round(time.Millisecond)))
}

func printInfo(msg string)    { fmt.Printf("%s[INFO]%s %s\n", colorCyan, colorReset, msg) }
func printSuccess(msg string) { fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg) }
func printError(msg string)   { fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg) }
func printWarning(msg string) { fmt.Printf("%s[WARN]%s %s\n", colorYellow, colorReset, msg) }

func buildAll(verbose bool) error {
	for _, name := range []string{"web", "report"} {
		if err := buildExecutable(name, verbose); err != nil {
			return err
		}
	}
	return nil
}

func buildExecutable(name string, verbose bool) error {
	out := executables[name]
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", distDir, err)
	}

	printInfo(fmt.Sprintf("Building %s -> %s", name, filepath.Join(distDir, out)))
	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", filepath.Join(distDir, out), "./cmd/" + name}
	return run(verbose, "go", args...)
}

func ldflags() string {
	commit := "unknown"
	if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		commit = strings.TrimSpace(string(out))
	} else {
		printWarning("git commit unavailable, embedding \"unknown\"")
	}

	return strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s/pkg/contracts.BuildTime=%s", module, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s/pkg/contracts.GitCommit=%s", module, commit),
	}, " ")
}

func runTests(verbose bool) error {
	printInfo("Running tests")
	args := []string{"test", "-race", "./..."}
	if verbose {
		args = append(args, "-v")
	}
	return run(true, "go", args...)
}

func clean(verbose bool) error {
	printInfo("Removing " + distDir)
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", distDir, err)
	}
	if verbose {
		printInfo("Clean finished")
	}
	return nil
}

func release(verbose bool) error {
	if err := clean(verbose); err != nil {
		return err
	}
	if err := runTests(verbose); err != nil {
		return err
	}
	return buildAll(verbose)
}

func run(verbose bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	if verbose {
		cmd.Stdout = os.Stdout
		printInfo(name + " " + strings.Join(args, " "))
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, args[0], err)
	}
	return nil
}

func showHelp() {
	fmt.Println(`Usage: go run build.go [-target=TARGET] [-v]

Targets:
  all      Build the web server and the report command (default)
  web      Build the web server
  report   Build the batch report command
  test     Run all tests with the race detector
  clean    Remove build output
  release  Clean, test and build everything`)
}
