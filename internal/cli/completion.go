package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so adding a flag only requires
// appending to it.
type FlagCompletion struct {
	Name      string   // flag name without the dash (e.g., "mode")
	Help      string   // description text
	Values    []string // suggested values (nil = boolean or free value)
	ValueName string   // label for the value in zsh (e.g., "duration")
	IsFile    bool     // true if the flag takes a file path
	IsMode    bool     // true if values come from the mode list
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Name: "help", Help: "Show help message"},
	{Name: "version", Help: "Show version information"},
	{Name: "mode", Help: "Execution mode", IsMode: true, ValueName: "mode"},
	{Name: "id", Help: "Order ID for single mode", ValueName: "id"},
	{Name: "type", Help: "Order type", Values: []string{"food", "electronics", "clothing", "other"}, ValueName: "type"},
	{Name: "priority", Help: "Order priority", Values: []string{"high", "medium", "low", "other"}, ValueName: "priority"},
	{Name: "qty", Help: "Order quantity", ValueName: "number"},
	{Name: "orders", Help: "YAML batch file", IsFile: true, ValueName: "file"},
	{Name: "timeout", Help: "Maximum run time", Values: []string{"30s", "1m", "5m"}, ValueName: "duration"},
	{Name: "job-timeout", Help: "Maximum time per order", Values: []string{"1s", "5s", "10s"}, ValueName: "duration"},
	{Name: "time-scale", Help: "Wall-clock compression factor", Values: []string{"1", "0.5", "0.1"}, ValueName: "factor"},
	{Name: "output", Help: "JSON export file", IsFile: true, ValueName: "file"},
	{Name: "quiet", Help: "Quiet mode for scripts"},
	{Name: "no-color", Help: "Disable colors"},
	{Name: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Name: "tui", Help: "Start the interactive dashboard"},
	{Name: "repl", Help: "Start the interactive shell"},
	{Name: "serve", Help: "Serve the HTTP API on an address", ValueName: "addr"},
	{Name: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// GenerateCompletion writes a completion script for shell. modes lists the
// accepted -mode values.
func GenerateCompletion(out io.Writer, shell string, modes []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, modes)
	case "zsh":
		return generateZshCompletion(out, modes)
	case "fish":
		return generateFishCompletion(out, modes)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

func generateBashCompletion(out io.Writer, modes []string) error {
	var opts []string
	var cases strings.Builder
	var files []string
	for _, f := range flagRegistry {
		opts = append(opts, "-"+f.Name)
		switch {
		case f.IsMode:
			fmt.Fprintf(&cases, "        -%s)\n            COMPREPLY=( $(compgen -W \"${modes}\" -- \"${cur}\") )\n            return 0\n            ;;\n", f.Name)
		case f.IsFile:
			files = append(files, "-"+f.Name)
		case len(f.Values) > 0:
			fmt.Fprintf(&cases, "        -%s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				f.Name, strings.Join(f.Values, " "))
		}
	}
	if len(files) > 0 {
		fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(files, "|"))
	}

	_, err := fmt.Fprintf(out, `# Bash completion script for ordersim
# Add this to your ~/.bashrc or ~/.bash_completion

_ordersim_completions() {
    local cur prev opts modes
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"
    modes="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _ordersim_completions ordersim
`, strings.Join(opts, " "), strings.Join(modes, " "), cases.String())
	if err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer, modes []string) error {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		suffix := ""
		switch {
		case f.IsFile:
			suffix = fmt.Sprintf(":%s:_files", f.ValueName)
		case f.IsMode:
			suffix = fmt.Sprintf(":%s:($modes)", f.ValueName)
		case len(f.Values) > 0:
			suffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
		case f.ValueName != "":
			suffix = fmt.Sprintf(":%s:", f.ValueName)
		}
		args = append(args, fmt.Sprintf("        '-%s[%s]%s'", f.Name, f.Help, suffix))
	}

	_, err := fmt.Fprintf(out, `#compdef ordersim

# Zsh completion script for ordersim
# Add this to your ~/.zshrc or place in $fpath

_ordersim() {
    local -a modes
    modes=(%s)

    _arguments -s \
%s
}

_ordersim "$@"
`, strings.Join(modes, " "), strings.Join(args, " \\\n"))
	if err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

func generateFishCompletion(out io.Writer, modes []string) error {
	lines := []string{
		"# Fish completion script for ordersim",
		"# Add this to ~/.config/fish/completions/ordersim.fish",
		"",
		"complete -c ordersim -f",
	}
	for _, f := range flagRegistry {
		parts := []string{"complete -c ordersim", "-o " + f.Name, fmt.Sprintf("-d '%s'", f.Help)}
		switch {
		case f.IsFile:
			parts = append(parts, "-rF")
		case f.IsMode:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(modes, " ")))
		case len(f.Values) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
		case f.ValueName != "":
			parts = append(parts, "-x")
		}
		lines = append(lines, strings.Join(parts, " "))
	}

	if _, err := fmt.Fprintln(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}
