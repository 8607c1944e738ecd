// Command gosession-configcheck loads a goSession configuration the way an
// application would and reports validation errors and lint warnings.
//
// Exit status is 1 when the configuration is invalid or has warnings at or
// above -fail-on, and 2 on usage errors.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/joho/godotenv"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file; empty uses defaults and GOSESSION_* variables")
		envFile    = flag.String("env-file", ".env", "dotenv file loaded before the environment is read")
		failOn     = flag.String("fail-on", "high", "minimum lint severity that fails: info, warn, high or none")
	)
	flag.Parse()

	os.Exit(run(os.Stdout, *configPath, *envFile, *failOn))
}

func run(out io.Writer, configPath, envFile, failOn string) int {
	threshold, enforce, err := parseSeverity(failOn)
	if err != nil {
		fmt.Fprintln(out, err)
		return 2
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(out, "load %s: %v\n", envFile, err)
			return 1
		}
	}

	cfg, err := goSession.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(out, "invalid: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "backend=%s keys=%s,%s login=%s home=%s roles=%s\n",
		cfg.Session.Backend,
		cfg.Session.ProfileKey,
		cfg.Session.TokenKey,
		cfg.Access.LoginPath,
		cfg.Access.HomePath,
		strings.Join(cfg.Access.Roles, ","),
	)

	warnings := cfg.Lint()
	for _, w := range warnings {
		fmt.Fprintf(out, "%-5s %s: %s\n", w.Severity, w.Code, w.Message)
	}
	if enforce {
		if err := warnings.AsError(threshold); err != nil {
			fmt.Fprintf(out, "failed: %v\n", err)
			return 1
		}
	}
	fmt.Fprintln(out, "ok")
	return 0
}

func parseSeverity(s string) (goSession.LintSeverity, bool, error) {
	switch strings.ToLower(s) {
	case "info":
		return goSession.LintInfo, true, nil
	case "warn":
		return goSession.LintWarn, true, nil
	case "high":
		return goSession.LintHigh, true, nil
	case "none":
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("unknown severity %q", s)
	}
}
