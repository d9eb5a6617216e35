package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/exec"
)

const dataDir = "/data"

func TestParse(t *testing.T) {
	type test struct {
		name   string
		input  string
		expect *Resolved
		warn   bool
	}

	defaults := Defaults(dataDir)

	var tests = []test{
		{
			name:   "empty",
			input:  "",
			expect: defaults,
		},
		{
			name:   "other table",
			input:  "[something_else]\nkey = \"value\"\n",
			expect: defaults,
		},
		{
			name:   "unparseable",
			input:  "[whenever_tray\nwhenever_command = ",
			expect: defaults,
			warn:   true,
		},
		{
			name:   "wrong type",
			input:  "[whenever_tray]\nwhenever_command = \"/opt/whenever\"\nwhenever_priority = 3\n",
			expect: defaults,
			warn:   true,
		},
		{
			name: "full",
			input: strings.Join([]string{
				`[whenever_tray]`,
				`whenever_command = "/opt/bin/whenever"`,
				`whenever_config = "/etc/whenever.toml"`,
				`whenever_logfile = "/var/log/my whenever.log"`,
				`whenever_loglevel = "trace"`,
				`whenever_priority = "normal"`,
				`logview_command = "mousepad"`,
			}, "\n"),
			expect: &Resolved{
				Commands: Commands{
					Launch: CommandLine{
						"/opt/bin/whenever", "-L", "trace", "-l", "/var/log/my whenever.log", "/etc/whenever.toml",
					},
					LogView: CommandLine{"mousepad", "/var/log/my whenever.log"},
					Version: CommandLine{"/opt/bin/whenever", "--version"},
				},
				Priority: exec.PriorityNormal,
			},
		},
		{
			name: "invalid values",
			input: strings.Join([]string{
				`[whenever_tray]`,
				`whenever_loglevel = "verbose"`,
				`whenever_priority = "realtime"`,
			}, "\n"),
			expect: defaults,
		},
		{
			name: "partial",
			input: strings.Join([]string{
				`[whenever_tray]`,
				`whenever_priority = "low"`,
				`whenever_loglevel = "warn"`,
			}, "\n"),
			expect: &Resolved{
				Commands: Commands{
					Launch: CommandLine{
						Platform.Command, "-L", "warn",
						"-l", filepath.Join(dataDir, "whenever.log"),
						filepath.Join(dataDir, "whenever.toml"),
					},
					LogView: Platform.LogViewer.With(filepath.Join(dataDir, "whenever.log")),
					Version: CommandLine{Platform.Command, "--version"},
				},
				Priority: exec.PriorityLow,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(test.input), dataDir)
			if test.warn != (err != nil) {
				t.Fatalf("unexpected warning state: %v", err)
			}
			if test.warn && !errors.Is(err, ErrInvalid) {
				t.Errorf("warning %q does not wrap ErrInvalid", err)
			}

			if !reflect.DeepEqual(got, test.expect) {
				t.Errorf("unexpected resolved config\n"+
					"got:      %#v\n"+
					"expected: %#v", got, test.expect)
			}
		})
	}
}

func TestParseUndecoded(t *testing.T) {
	input := "[whenever_tray]\nwhenever_priority = \"low\"\nicon_theme = \"dark\"\n"

	got, err := Parse(strings.NewReader(input), dataDir)
	if err != nil {
		t.Fatal("unexpected warning:", err)
	}

	expect := []string{"whenever_tray.icon_theme"}
	if !reflect.DeepEqual(got.Undecoded, expect) {
		t.Errorf("expected undecoded %q, got %q", expect, got.Undecoded)
	}
	if got.Priority != exec.PriorityLow {
		t.Errorf("unknown keys must not invalidate the file, got priority %v", got.Priority)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults(dataDir)

	if d.Priority != exec.PriorityMinimum {
		t.Errorf("expected minimum priority, got %v", d.Priority)
	}

	launch := d.Commands.Launch
	if len(launch) != 6 || launch[0] != Platform.Command || launch[1] != "-L" || launch[2] != "info" || launch[3] != "-l" {
		t.Errorf("unexpected launch command %q", launch)
	}
	if launch[4] != filepath.Join(dataDir, "whenever.log") {
		t.Errorf("unexpected log path %q", launch[4])
	}
	if launch[5] != filepath.Join(dataDir, "whenever.toml") {
		t.Errorf("unexpected config path %q", launch[5])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		got, err := Load(filepath.Join(dir, "nope.toml"), dir)
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected not exist warning, got %v", err)
		}
		if !reflect.DeepEqual(got, Defaults(dir)) {
			t.Errorf("expected defaults, got %#v", got)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := DefaultPath(dir)
		data := "[whenever_tray]\nwhenever_command = \"/usr/bin/whenever\"\n"

		if err := os.WriteFile(path, []byte(data), 0600); err != nil {
			t.Fatal("failed to write config:", err)
		}

		got, err := Load(path, dir)
		if err != nil {
			t.Fatal("unexpected warning:", err)
		}
		if got.Path != path {
			t.Errorf("expected path %q, got %q", path, got.Path)
		}
		if got.Commands.Version[0] != "/usr/bin/whenever" {
			t.Errorf("unexpected version command %q", got.Commands.Version)
		}
	})
}

func TestCommandLineString(t *testing.T) {
	tests := []struct {
		cmd    CommandLine
		expect string
	}{
		{CommandLine{"whenever", "--version"}, "whenever --version"},
		{
			CommandLine{"C:\\Program Files\\whenever.exe", "-L", "info", "-l", "C:\\my logs\\w.log", "w.toml"},
			`"C:\Program Files\whenever.exe" -L info -l "C:\my logs\w.log" w.toml`,
		},
		{CommandLine{"echo", ""}, `echo ""`},
		{CommandLine{"echo", `say "hi"`}, `echo "say \"hi\""`},
	}

	for _, test := range tests {
		if s := test.cmd.String(); s != test.expect {
			t.Errorf("expected %s, got %s", test.expect, s)
		}
	}
}

func TestCommandLineWith(t *testing.T) {
	base := make(CommandLine, 1, 4)
	base[0] = "open"

	a := base.With("a")
	b := base.With("b")

	if a[1] != "a" || b[1] != "b" {
		t.Errorf("With must not share the backing array: %q, %q", a, b)
	}
}

func TestSelectPlatform(t *testing.T) {
	if p := selectPlatform("windows"); p.Command != "whenever.exe" || p.LogViewer[0] != "notepad.exe" {
		t.Errorf("unexpected windows defaults %#v", p)
	}
	if p := selectPlatform("linux"); p.Command != "whenever" || p.LogViewer[0] != "gnome-text-editor" {
		t.Errorf("unexpected linux defaults %#v", p)
	}
	if p := selectPlatform("freebsd"); p.Command != "whenever" {
		t.Errorf("unexpected freebsd defaults %#v", p)
	}
}
