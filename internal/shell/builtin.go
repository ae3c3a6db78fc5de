package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"zipsh/internal/fs"
)

// builtinFunc runs a command; it returns true when the shell must exit.
type builtinFunc func(s *Shell, args []string) bool

type builtin struct {
	name string
	fn   builtinFunc
	help string
}

var builtins = []builtin{
	{"ls", builtinLs, "List the current directory"},
	{"cd", builtinCd, "Change the current directory"},
	{"pwd", builtinPwd, "Print the current directory"},
	{"cat", builtinCat, "Print file contents"},
	{"whoami", builtinWhoami, "Print the user name"},
	{"uptime", builtinUptime, "Print seconds since the session started"},
	{"help", builtinHelp, "Show this help message"},
	{"exit", builtinExit, "Leave the shell"},
}

var builtinMap = make(map[string]*builtin)

func init() {
	for i := range builtins {
		builtinMap[builtins[i].name] = &builtins[i]
	}
}

func builtinLs(s *Shell, _ []string) bool {
	for _, name := range s.session.Ls() {
		fmt.Fprintln(s.out, name)
	}
	return false
}

func builtinCd(s *Shell, args []string) bool {
	if len(args) == 0 {
		return false
	}
	if err := s.session.Cd(args[0]); err != nil {
		fmt.Fprintf(s.out, "cd: no such file or directory: %s\n", args[0])
	}
	return false
}

func builtinPwd(s *Shell, _ []string) bool {
	fmt.Fprintln(s.out, s.session.Cwd())
	return false
}

func builtinCat(s *Shell, args []string) bool {
	for _, arg := range args {
		data, err := s.session.Cat(arg)
		switch {
		case errors.Is(err, fs.ErrIsDirectory):
			fmt.Fprintf(s.out, "cat: %s: Is a directory\n", arg)
			continue
		case err != nil:
			fmt.Fprintf(s.out, "cat: %s: No such file or directory\n", arg)
			continue
		}

		_, _ = s.out.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Fprintln(s.out)
		}
	}
	return false
}

func builtinWhoami(s *Shell, _ []string) bool {
	fmt.Fprintln(s.out, s.session.Whoami())
	return false
}

func builtinUptime(s *Shell, _ []string) bool {
	fmt.Fprintln(s.out, strconv.FormatFloat(s.session.Uptime().Seconds(), 'f', -1, 64))
	return false
}

func builtinHelp(s *Shell, _ []string) bool {
	names := make([]string, 0, len(builtinMap))
	for name := range builtinMap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "%-8s %s\n", name, builtinMap[name].help)
	}
	return false
}

func builtinExit(s *Shell, _ []string) bool {
	s.goodbye(false)
	return true
}
