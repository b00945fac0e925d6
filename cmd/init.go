package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/ibesdash/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init <workspace-name>",
	Short: "Initialize a workspace that records analysis runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := defaultWorkspacesDir()
		if err != nil {
			return err
		}
		wsDir := filepath.Join(root, name)
		// Refuse to overwrite an existing workspace.
		if info, err := os.Stat(wsDir); err == nil && info.IsDir() {
			if workspace.Exists(wsDir) {
				return fmt.Errorf("workspace already exists at %s", wsDir)
			}
			entries, err := os.ReadDir(wsDir)
			if err != nil {
				return fmt.Errorf("inspect workspace directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize workspace", wsDir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat workspace directory: %w", err)
		}
		if err := os.MkdirAll(wsDir, 0o755); err != nil {
			return err
		}
		w := workspace.New(name, initDescription, wsDir)
		if err := w.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Workspace initialized: %s\n", wsDir)
		return nil
	},
}

func defaultWorkspacesDir() (string, error) {
	dir := settings().WorkspaceDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".ibesdash", "workspace")
	}
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = strings.TrimPrefix(dir, "~")
		dir = strings.TrimPrefix(dir, string(os.PathSeparator))
		dir = strings.TrimPrefix(dir, "/")
		dir = filepath.Join(home, dir)
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveWorkspaceDirByName(name string) (string, error) {
	if name == "" {
		return "", errors.New("workspace name is required")
	}
	root, err := defaultWorkspacesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// openWorkspace loads a workspace by name, or, when name is empty, the
// workspace enclosing the current directory.
func openWorkspace(name string) (*workspace.Workspace, error) {
	if name == "" {
		dir, err := workspace.FindRoot("")
		if err != nil {
			return nil, fmt.Errorf("no --workspace given: %w", err)
		}
		return workspace.Load(dir)
	}
	dir, err := resolveWorkspaceDirByName(name)
	if err != nil {
		return nil, err
	}
	return workspace.Load(dir)
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "workspace description")
}
