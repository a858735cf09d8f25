package main

import (
	"fmt"
	"strconv"
	"strings"
)

// sugarOptions is the parsed form of the compile-time key=value option
// list a //cachalot:generate directive may carry (spec §6). bytes/kbs/
// mbs/gbs are accepted and summed but otherwise unused — see spec §9's
// open question on whether that sum is meant as a future capacity bound.
type sugarOptions struct {
	root          string
	pageSize      int
	sizeHintBytes int64
}

const defaultPageSize = 1024

func parseOptions(directive string) (sugarOptions, error) {
	opts := sugarOptions{pageSize: defaultPageSize}
	fields := strings.Fields(directive)
	for _, f := range fields {
		if f == "cachalot:generate" {
			continue
		}
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			return opts, fmt.Errorf("cachalotgen: malformed option %q (want key=value)", f)
		}
		key, val := kv[0], kv[1]
		switch key {
		case "root":
			opts.root = val
		case "bytes":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return opts, fmt.Errorf("cachalotgen: bytes=%q: %w", val, err)
			}
			opts.sizeHintBytes += n
		case "kbs":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return opts, fmt.Errorf("cachalotgen: kbs=%q: %w", val, err)
			}
			opts.sizeHintBytes += n * 1024
		case "mbs":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return opts, fmt.Errorf("cachalotgen: mbs=%q: %w", val, err)
			}
			opts.sizeHintBytes += n * 1024 * 1024
		case "gbs":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return opts, fmt.Errorf("cachalotgen: gbs=%q: %w", val, err)
			}
			opts.sizeHintBytes += n * 1024 * 1024 * 1024
		case "pagesize":
			n, err := strconv.Atoi(val)
			if err != nil {
				return opts, fmt.Errorf("cachalotgen: pagesize=%q: %w", val, err)
			}
			opts.pageSize = n
		default:
			return opts, fmt.Errorf("cachalotgen: unrecognized option %q", key)
		}
	}
	return opts, nil
}
