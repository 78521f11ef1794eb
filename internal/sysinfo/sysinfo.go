// Package sysinfo reports battery and machine health as spoken sentences.
package sysinfo

import (
	"fmt"
	"strings"
	"time"

	log "log/slog"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

type Reporter struct{}

func New() *Reporter { return &Reporter{} }

// BatteryStatus reads the first battery. Desktops without one get a plain
// statement instead of an error.
func (r *Reporter) BatteryStatus() string {
	batteries, err := battery.GetAll()
	if err != nil || len(batteries) == 0 {
		log.Debug("No battery found", "err", err)
		return "I couldn't find a battery on this machine."
	}

	b := batteries[0]
	percent := 0.0
	if b.Full > 0 {
		percent = b.Current / b.Full * 100
	}

	state := strings.ToLower(b.State.String())
	switch state {
	case "charging":
		return fmt.Sprintf("Battery is at %.0f percent and charging.", percent)
	case "discharging":
		return fmt.Sprintf("Battery is at %.0f percent.", percent)
	case "full":
		return "Battery is fully charged."
	default:
		return fmt.Sprintf("Battery is at %.0f percent, state %s.", percent, state)
	}
}

// SystemStatus summarizes the OS, CPU load, memory, disk and uptime in
// one breath.
func (r *Reporter) SystemStatus() string {
	parts := make([]string, 0, 5)

	if info, err := host.Info(); err == nil {
		parts = append(parts, fmt.Sprintf("you are running %s %s", info.Platform, info.PlatformVersion))
	}
	if loads, err := cpu.Percent(500*time.Millisecond, false); err == nil && len(loads) > 0 {
		parts = append(parts, fmt.Sprintf("CPU usage is %.0f percent", loads[0]))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		parts = append(parts, fmt.Sprintf("memory usage is %.0f percent", vm.UsedPercent))
	}
	if du, err := disk.Usage("/"); err == nil {
		parts = append(parts, fmt.Sprintf("disk usage is %.0f percent", du.UsedPercent))
	}
	if up, err := host.Uptime(); err == nil {
		parts = append(parts, "uptime is "+formatUptime(up))
	}

	if len(parts) == 0 {
		return "I couldn't read the system status."
	}
	return capitalize(strings.Join(parts, ", ") + ".")
}

func formatUptime(seconds uint64) string {
	d := time.Duration(seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d days and %d hours", days, hours)
	case hours > 0:
		return fmt.Sprintf("%d hours and %d minutes", hours, minutes)
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
