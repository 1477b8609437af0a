package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nsgrp/kcgx"
)

func main() {
	var (
		mode      string
		listen    string
		outFD     int
		debugBody bool
		maxBody   int64
		maxDepth  int
		mimeList  []string
		verbose   bool
	)

	root := &cobra.Command{
		Use:   "kcgx-worker",
		Short: "Untrusted CGI/FastCGI request parser worker",
		Long:  "kcgx-worker ingests one CGI request, or serves a FastCGI session loop, parsing the untrusted input and emitting the parsed pair stream on its output descriptor.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer logger.Sync()
			kcgx.SetLogger(logger.Sugar())

			cfg := kcgx.DefaultConfig()
			if maxBody > 0 {
				cfg.MaxBodySize = maxBody
			}
			if maxDepth > 0 {
				cfg.MaxMixedDepth = maxDepth
			}
			if debugBody {
				cfg.Debug |= kcgx.DebugLogBody
			}
			cfg.MIMEWhitelist = mimeList

			var table kcgx.KeyTable
			enc := kcgx.NewFileEncoder(outFD)

			switch strings.ToLower(mode) {
			case "cgi":
				return kcgx.ServeCGI(kcgx.OSEnviron{}, os.Stdin, enc, table, cfg)
			case "fastcgi":
				conn, err := dialFastCGI(listen)
				if err != nil {
					return fmt.Errorf("connecting to FastCGI listener: %w", err)
				}
				defer conn.Close()
				return kcgx.ServeFastCGI(conn, enc, table, cfg)
			default:
				return fmt.Errorf("unknown --mode %q: want \"cgi\" or \"fastcgi\"", mode)
			}
		},
	}

	flags := root.Flags()
	flags.StringVar(&mode, "mode", "cgi", "worker mode: \"cgi\" or \"fastcgi\"")
	flags.StringVar(&listen, "listen", "", "FastCGI control socket address (unix:/path or host:port), fastcgi mode only")
	flags.IntVar(&outFD, "out-fd", 1, "file descriptor to write the parsed pair stream to")
	flags.BoolVar(&debugBody, "debug-body", false, "hex-escape and log the raw request body to stderr")
	flags.Int64Var(&maxBody, "max-body-size", 0, "maximum request body size in bytes (0 = default 32MiB)")
	flags.IntVar(&maxDepth, "max-mixed-depth", 0, "maximum multipart/mixed recursion depth (0 = default 8)")
	flags.StringSliceVar(&mimeList, "mime-whitelist", nil, "recognized content types, in content-type-index order")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// dialFastCGI connects to the control socket the FastCGI worker wrapper
// listens on: a unix domain socket when addr starts with "unix:",
// otherwise TCP.
func dialFastCGI(addr string) (net.Conn, error) {
	if rest, ok := strings.CutPrefix(addr, "unix:"); ok {
		return net.Dial("unix", rest)
	}
	return net.Dial("tcp", addr)
}
