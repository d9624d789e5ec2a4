package main

import (
	"strconv"
	"strings"
)

// longForms maps the two letter short flags pflag cannot parse.
var longForms = map[string]string{
	"-pd": "--pad",
	"-sc": "--scale",
}

// normalizeArgs rewrites the command line into a form pflag understands:
// two letter short flags become long flags, "-l LAT LON" becomes
// "--location=LAT,LON", "-b VV VH" becomes "--bands=VV,VH" and
// "-v True" becomes "--verbose=true".
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := longForms[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
			out = append(out, arg)
			continue
		}

		switch {
		case !hasValue && (arg == "-l" || arg == "--location"):
			if i+2 < len(args) && isNumber(args[i+1]) && isNumber(args[i+2]) {
				out = append(out, "--location="+args[i+1]+","+args[i+2])
				i += 2
				continue
			}
		case !hasValue && (arg == "-v" || arg == "--verbose"):
			if i+1 < len(args) {
				if v, err := strconv.ParseBool(args[i+1]); err == nil {
					out = append(out, "--verbose="+strconv.FormatBool(v))
					i++
					continue
				}
			}
		case !hasValue && (arg == "-b" || arg == "--bands"):
			j := i + 1
			for j < len(args) && !strings.HasPrefix(args[j], "-") {
				j++
			}
			if j-i > 2 {
				out = append(out, "--bands="+strings.Join(args[i+1:j], ","))
				i = j - 1
				continue
			}
		}

		out = append(out, arg)
	}

	return out
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
