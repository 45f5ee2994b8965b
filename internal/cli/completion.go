package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for relayout.

To load completions:

Bash:
  $ source <(relayout completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ relayout completion bash > /etc/bash_completion.d/relayout
  # macOS:
  $ relayout completion bash > $(brew --prefix)/etc/bash_completion.d/relayout

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ relayout completion zsh > "${fpath[1]}/_relayout"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ relayout completion fish | source

  # To load completions for each session, execute once:
  $ relayout completion fish > ~/.config/fish/completions/relayout.fish

PowerShell:
  PS> relayout completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> relayout completion powershell > relayout.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// layoutExts are the file extensions offered when completing a layout
// argument.
var layoutExts = []string{"toml", "yaml", "yml", "json"}

// layoutArgs completes the layout file argument of a command.
func layoutArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return layoutExts, cobra.ShellCompDirectiveFilterFileExt
}

// componentArgs completes a layout file, then the names of its components.
func componentArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return layoutArgs(cmd, args, toComplete)
	case 1:
		f, _, err := loadLayout(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var names []string
		for _, c := range f.Components {
			if strings.HasPrefix(c.Name, toComplete) {
				names = append(names, c.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
