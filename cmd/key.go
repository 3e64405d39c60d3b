package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mohsinsiddi/autosend/internal/ui"
	"github.com/Mohsinsiddi/autosend/internal/wallet"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage signing keys in the OS keychain",
}

var keyImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Store a private key under autosend.<name>",
	Long: `Reads a hex private key from the terminal without echo, or from stdin
when it is not a terminal, and stores it in the OS keychain. Set
KEY_REF=autosend.<name> to use it instead of PRIVATE_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, "Private key (hex): ")
		key, err := readSecret(cmd.InOrStdin())
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}

		addr, err := wallet.ValidateKey(key)
		if err != nil {
			return err
		}
		ref, err := openKeystore().Store(args[0], key)
		if err != nil {
			return fmt.Errorf("storing key: %w", err)
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Stored key for %s", ui.Addr(addr.Hex()))))
		fmt.Fprintln(out, ui.Step("Use it with "+ui.Val("KEY_REF="+ref)))
		return nil
	},
}

var keyRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := wallet.RefFor(args[0])
		if err := openKeystore().Delete(ref); err != nil {
			return fmt.Errorf("removing %s: %w", ref, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed "+ref))
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyImportCmd, keyRemoveCmd)
}

// readSecret reads without echo from a terminal, otherwise one line.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
