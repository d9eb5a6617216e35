package main

import (
	"fmt"

	"fyne.io/systray"
	"git.unix.lgbt/diamondburned/whenevertray/whenevertray"
	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/config"
	"github.com/gen2brain/beeep"
	"github.com/pkg/errors"
)

const (
	msgConfigWarning = "Could not read/parse configuration file:\n" +
		"please check for presence or errors.\n" +
		"Default values will be used."
	msgStartFailed = "Could not start scheduler process:\n" +
		"please check configuration file."

	appDescription = "A minimalistic launcher to start/stop the Whenever scheduler\n" +
		"in a desktop environment, and to provide basic access to the\n" +
		"scheduler interface through an icon in the tray notification\n" +
		"area and its associated menu.\n\n" +
		"(running: %s)"
)

var errStartFailed = errors.New("could not start scheduler process")

type tray struct {
	inst   *instance
	sv     *whenevertray.Supervisor
	failed chan error
}

func runTray() error {
	ctx, cancel := signalContext()
	defer cancel()

	inst, err := bootstrap(ctx, whenevertray.JournalerFunc(notifyConfigChanges))
	if err != nil {
		if errors.Is(err, errAlreadyRunning) {
			beeep.Alert(config.AppName, "WheneverTray is already running.", "")
		}
		return err
	}
	defer inst.Close()

	t := &tray{
		inst:   inst,
		sv:     inst.Supervisor,
		failed: make(chan error, 1),
	}

	done := make(chan struct{})
	defer close(done)

	// A signal quits the tray like its Exit item.
	go func() {
		select {
		case <-ctx.Done():
			systray.Quit()
		case <-done:
		}
	}()

	systray.Run(t.onReady, t.onExit)

	select {
	case err := <-t.failed:
		return err
	default:
		return nil
	}
}

func (t *tray) onReady() {
	systray.SetIcon(trayIcon)
	systray.SetTitle(config.AppName)
	systray.SetTooltip(appNameLong)

	mPause := systray.AddMenuItem("Pause Scheduler", "Pause the scheduler")
	mResume := systray.AddMenuItem("Resume Scheduler", "Resume the scheduler")
	mReset := systray.AddMenuItem("Reset Conditions", "Reset the conditions of the scheduler")
	mShowLog := systray.AddMenuItem("Show Log...", "Open the scheduler log")
	systray.AddSeparator()
	mAbout := systray.AddMenuItem("About...", "About "+config.AppName)
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Stop the scheduler and exit")

	if t.inst.ConfigErr != nil {
		beeep.Alert("Warning", msgConfigWarning, "")
	}

	go func() {
		if !t.sv.Start(t.inst.Config.Priority) {
			beeep.Alert("Error", msgStartFailed, "")
			t.failed <- errStartFailed
			systray.Quit()
			return
		}

		systray.SetTooltip(fmt.Sprintf("%s\n(running: %s)", appNameLong, t.sv.GetVersion()))

		for {
			select {
			case <-mPause.ClickedCh:
				t.sv.Pause()
			case <-mResume.ClickedCh:
				t.sv.Resume()
			case <-mReset.ClickedCh:
				t.sv.ResetConditions()
			case <-mShowLog.ClickedCh:
				t.sv.ShowLog()
			case <-mAbout.ClickedCh:
				t.about()
			case <-mExit.ClickedCh:
				t.sv.Stop()
				systray.Quit()
				return
			}
		}
	}()
}

// onExit stops the scheduler if the tray is torn down without Exit. Stop does
// nothing if it already stopped.
func (t *tray) onExit() {
	t.sv.Stop()
}

func (t *tray) about() {
	title := appNameLong + " " + Version
	desc := fmt.Sprintf(appDescription, t.sv.GetVersion())

	if err := beeep.Notify(title, desc, ""); err != nil {
		t.inst.Log.Warn().Err(err).Msg("failed to show about")
	}
}

// notifyConfigChanges tells the user that configuration changes need a
// restart.
func notifyConfigChanges(ev whenevertray.Event) error {
	modified, ok := ev.(*whenevertray.EventConfigModified)
	if !ok {
		return nil
	}

	return beeep.Notify(config.AppName, fmt.Sprintf(
		"Configuration file changed (%s):\nrestart to apply the changes.", modified.Op), "")
}
