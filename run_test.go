package main

import "testing"

type fakeController struct {
	running bool
	calls   []string
}

func (c *fakeController) call(name string) bool {
	c.calls = append(c.calls, name)
	return c.running
}

func (c *fakeController) Pause() bool           { return c.call("pause") }
func (c *fakeController) Resume() bool          { return c.call("resume") }
func (c *fakeController) ResetConditions() bool { return c.call("reset") }
func (c *fakeController) ShowLog() bool         { return c.call("log") }
func (c *fakeController) GetVersion() string    { return "whenever 0.2.1" }

func TestDispatch(t *testing.T) {
	type test struct {
		line    string
		running bool
		reply   string
		quit    bool
		calls   int
	}

	var tests = []test{
		{"pause", true, "ok", false, 1},
		{"  resume \r", true, "ok", false, 1},
		{"reset", true, "ok", false, 1},
		{"log", true, "ok", false, 1},
		{"pause", false, "failed", false, 1},
		{"version", false, "whenever 0.2.1", false, 0},
		{"exit", true, "", true, 0},
		{"", true, "", false, 0},
		{"reset_conditions", true, `unknown command "reset_conditions"`, false, 0},
	}

	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			c := &fakeController{running: test.running}

			reply, quit := dispatch(c, test.line)
			if reply != test.reply || quit != test.quit {
				t.Fatalf("got (%q, %v), expected (%q, %v)", reply, quit, test.reply, test.quit)
			}

			if len(c.calls) != test.calls {
				t.Fatalf("unexpected calls %q", c.calls)
			}
		})
	}
}
