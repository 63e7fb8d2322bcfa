// Command reachcheck runs mailreach against addresses given as arguments
// or, without arguments, one per line on stdin, and prints JSON.
//
//	reachcheck -sender verify@myapp.com user@gmail.com
//	reachcheck -batch -budget 100 < addresses.txt
//
// Options come from MAILREACH_* environment variables and the -env file.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optimode/mailreach"
)

var (
	envPath  string
	sender   string
	batch    bool
	budget   int
	timeout  time.Duration
	logLevel string
)

func init() {
	flag.StringVar(&envPath, "env", ".env", "dotenv file with MAILREACH_* settings, ignored when absent")
	flag.StringVar(&sender, "sender", "", "MAIL FROM address (default MAILREACH_SMTP_MAIL_FROM)")
	flag.BoolVar(&batch, "batch", false, "check all addresses as one batch")
	flag.IntVar(&budget, "budget", -1, "available budget units for -batch (default: exactly enough)")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func main() {
	flag.Parse()

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Fatalf("invalid -log-level: %v", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	var files []string
	if _, err := os.Stat(envPath); err == nil {
		files = append(files, envPath)
	}
	opts, err := mailreach.LoadOptions(files...)
	if err != nil {
		log.Fatalf("could not load options: %v", err)
	}

	addresses, err := readAddresses(flag.Args())
	if err != nil {
		log.Fatalf("could not read addresses: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	engine := mailreach.New(opts).WithLogger(log.StandardLogger())

	if batch {
		if budget < 0 {
			budget = len(addresses)
		}
		res, err := engine.RunBatch(ctx, addresses, sender, budget)
		if err != nil {
			log.Fatalf("batch rejected: %v", err)
		}
		printJSON(res)
		return
	}

	for _, addr := range addresses {
		rec, err := engine.Check(ctx, addr, sender)
		if err != nil && !errors.Is(err, mailreach.ErrInvalidSyntax) {
			log.Fatalf("check %q: %v", addr, err)
		}
		printJSON(rec)
	}
}

func readAddresses(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
