package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	lenientBooleanTypeName      = "bool"
	lenientBooleanTrueLiteral   = "true"
	lenientBooleanAcceptedList  = "true, false, yes, no, on, off, 1, 0"
	lenientBooleanInvalidFormat = "invalid boolean value %q for --%s; accepted values: %s"
)

var lenientBooleanLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseLenientBoolean(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	parsed, known := lenientBooleanLiterals[normalized]
	return parsed, known
}

// lenientBooleanValue accepts yes/no style literals in addition to true/false.
type lenientBooleanValue struct {
	target   *bool
	flagName string
}

func (value *lenientBooleanValue) Set(input string) error {
	parsed, known := parseLenientBoolean(input)
	if !known {
		return fmt.Errorf(lenientBooleanInvalidFormat, input, value.flagName, lenientBooleanAcceptedList)
	}
	*value.target = parsed
	return nil
}

func (value *lenientBooleanValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *lenientBooleanValue) Type() string {
	return lenientBooleanTypeName
}

// registerBooleanFlag adds a boolean flag that also accepts a separate value
// argument such as "--summary no" once arguments are normalized.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.Var(&lenientBooleanValue{target: target, flagName: name}, name, usage)
	if registered := flagSet.Lookup(name); registered != nil {
		registered.DefValue = strconv.FormatBool(defaultValue)
		registered.NoOptDefVal = lenientBooleanTrueLiteral
	}
}

// normalizeBooleanFlagArguments joins "--flag value" pairs into "--flag=value"
// for lenient boolean flags when value is a boolean literal. Other arguments
// pass through unchanged, so "--summary octo/repo" keeps the repository.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	lenientFlags := map[string]struct{}{}
	collectLenientBooleanFlags(command, lenientFlags)
	if len(lenientFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(argument, "--")
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, lenient := lenientFlags[flagName]; lenient {
				next := arguments[index+1]
				if _, known := lenientBooleanLiterals[strings.ToLower(strings.TrimSpace(next))]; known && !strings.HasPrefix(next, "-") {
					normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, next))
					index++
					continue
				}
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectLenientBooleanFlags(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if _, lenient := flag.Value.(*lenientBooleanValue); lenient {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectLenientBooleanFlags(child, target)
	}
}
