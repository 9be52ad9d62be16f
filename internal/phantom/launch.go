package phantom

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/iradul/vscode-phantomjs-debug/internal/config"
)

const remoteDebuggerPortFlag = "--remote-debugger-port="

// LaunchArgs are the launch configuration properties understood by the adapter.
type LaunchArgs struct {
	// Path of the PhantomJS executable.
	RuntimeExecutable string `json:"runtimeExecutable"`

	// Script to debug. Relative paths are resolved against Cwd.
	File string `json:"file"`

	// Extra PhantomJS command line arguments, passed before the script path.
	RuntimeArgs []string `json:"runtimeArgs,omitempty"`

	Port    int    `json:"port,omitempty"`
	Address string `json:"address,omitempty"`

	// Directory that phantomjs:// script URLs are resolved against. Defaults to the directory of File.
	WebRoot string `json:"webRoot,omitempty"`

	// Environment variables added to the adapter environment for the PhantomJS process.
	Env map[string]string `json:"env,omitempty"`

	// Optional .env file with more environment variables. Values in Env take precedence.
	EnvFile string `json:"envFile,omitempty"`

	Cwd string `json:"cwd,omitempty"`
}

// ParseLaunchArgs decodes launch request arguments, validates them, and fills in defaults.
func ParseLaunchArgs(raw json.RawMessage, settings config.Settings) (*LaunchArgs, error) {
	args := &LaunchArgs{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, args); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLaunchArgs, err)
		}
	}

	if args.RuntimeExecutable == "" {
		return nil, ErrMissingExecutable
	}
	if args.File == "" {
		return nil, ErrMissingFile
	}

	if args.Cwd == "" {
		if wd, wdErr := os.Getwd(); wdErr == nil {
			args.Cwd = wd
		}
	}
	if !filepath.IsAbs(args.File) {
		args.File = filepath.Join(args.Cwd, args.File)
	}
	args.File = filepath.Clean(args.File)

	if args.Port == 0 {
		args.Port = settings.DefaultPort
	}
	if args.Port < 0 || args.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d is out of range", ErrInvalidLaunchArgs, args.Port)
	}
	if args.Address == "" {
		args.Address = settings.DefaultAddress
	}
	if args.WebRoot == "" {
		args.WebRoot = filepath.Dir(args.File)
	} else if !filepath.IsAbs(args.WebRoot) {
		args.WebRoot = filepath.Join(args.Cwd, args.WebRoot)
	}

	if args.EnvFile != "" {
		if !filepath.IsAbs(args.EnvFile) {
			args.EnvFile = filepath.Join(args.Cwd, args.EnvFile)
		}
		fileEnv, readErr := godotenv.Read(args.EnvFile)
		if readErr != nil {
			return nil, fmt.Errorf("%w: could not read environment file %s: %w", ErrInvalidLaunchArgs, args.EnvFile, readErr)
		}
		for name, value := range args.Env {
			fileEnv[name] = value
		}
		args.Env = fileEnv
	}

	return args, nil
}

// Argv returns the PhantomJS command line arguments (without the executable).
func (la *LaunchArgs) Argv() []string {
	argv := make([]string, 0, len(la.RuntimeArgs)+2)
	argv = append(argv, remoteDebuggerPortFlag+strconv.Itoa(la.Port))
	argv = append(argv, la.RuntimeArgs...)
	argv = append(argv, la.File)
	return argv
}

// Command returns the command that starts PhantomJS. Standard streams are not connected.
func (la *LaunchArgs) Command() *exec.Cmd {
	cmd := exec.Command(la.RuntimeExecutable, la.Argv()...)
	cmd.Dir = la.Cwd

	if len(la.Env) > 0 {
		names := make([]string, 0, len(la.Env))
		for name := range la.Env {
			names = append(names, name)
		}
		sort.Strings(names)

		cmd.Env = os.Environ()
		for _, name := range names {
			cmd.Env = append(cmd.Env, name+"="+la.Env[name])
		}
	}

	return cmd
}
