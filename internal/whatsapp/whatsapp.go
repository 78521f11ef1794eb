// Package whatsapp automates the WhatsApp desktop client through the
// window manager: focus the window, search the contact, type and send.
package whatsapp

import (
	"fmt"
	"os/exec"
	"time"

	log "log/slog"
)

// Driver is the small set of UI gestures the automation is built from.
type Driver interface {
	Launch() error
	Focus() error
	SearchContact(name string) error
	SendText(body string) error
}

// Client sequences Driver gestures into the two operations the assistant
// needs. pause lets tests run without real UI settle delays.
type Client struct {
	driver Driver
	pause  func(time.Duration)
}

func New(driver Driver) *Client {
	return &Client{driver: driver, pause: time.Sleep}
}

// EnsureOpen focuses the WhatsApp window, launching the client first when
// no window exists yet.
func (c *Client) EnsureOpen() bool {
	if err := c.driver.Focus(); err == nil {
		return true
	}
	if err := c.driver.Launch(); err != nil {
		log.Error("Failed to launch WhatsApp", "err", err)
		return false
	}
	c.pause(3 * time.Second)
	if err := c.driver.Focus(); err != nil {
		log.Error("WhatsApp window did not appear", "err", err)
		return false
	}
	return true
}

// Send delivers body to the named contact. Each gesture gets a short settle
// pause, matching how the desktop client responds to input.
func (c *Client) Send(contact, body string) bool {
	if !c.EnsureOpen() {
		return false
	}
	c.pause(time.Second)
	if err := c.driver.SearchContact(contact); err != nil {
		log.Error("Contact search failed", "contact", contact, "err", err)
		return false
	}
	c.pause(time.Second)
	if err := c.driver.SendText(body); err != nil {
		log.Error("Failed to send message", "contact", contact, "err", err)
		return false
	}
	return true
}

// X11Driver drives the client with wmctrl and xdotool.
type X11Driver struct {
	runner func(name string, args ...string) error
}

func NewX11Driver() *X11Driver {
	return &X11Driver{runner: runCommand}
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, string(out))
	}
	return nil
}

func (d *X11Driver) Launch() error {
	return d.runner("xdg-open", "https://web.whatsapp.com")
}

func (d *X11Driver) Focus() error {
	return d.runner("wmctrl", "-a", "whatsapp")
}

func (d *X11Driver) SearchContact(name string) error {
	if err := d.runner("xdotool", "key", "ctrl+f"); err != nil {
		return err
	}
	if err := d.runner("xdotool", "type", "--delay", "50", name); err != nil {
		return err
	}
	return d.runner("xdotool", "key", "Return")
}

func (d *X11Driver) SendText(body string) error {
	if err := d.runner("xdotool", "type", "--delay", "50", body); err != nil {
		return err
	}
	return d.runner("xdotool", "key", "Return")
}
