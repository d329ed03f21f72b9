package commands

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"triage-bot/utils"
)

func registerSystemCommands(r *Registry) {
	r.Register(&Command{
		Name:     "shutdown",
		Category: "System",
		Help:     "Shut the bot down. Owner only.",
		Usage:    "shutdown",
		Handler:  handleShutdown,
	})
	r.Register(&Command{
		Name:     "reload_patterns",
		Category: "System",
		Help:     "Reload the signature library from disk. Owner only.",
		Usage:    "reload_patterns",
		Handler:  handleReloadPatterns,
	})
	r.Register(&Command{
		Name:     "host",
		Category: "System",
		Help:     "Show host CPU, memory and uptime information. Owner only.",
		Usage:    "host",
		Handler:  handleHost,
	})
}

func handleShutdown(ctx *Context) error {
	ctx.Reply("Shutting down.")
	if err := utils.LogInfo(ctx.Session, ctx.Bot.LogChannelID(), "System", "Shutdown", "Owner-issued shutdown."); err != nil {
		log.Printf("Failed to send shutdown log: %v", err)
	}
	// Give the acknowledgement a moment to go out before the gateway
	// connection drops.
	time.Sleep(time.Second)
	ctx.Bot.RequestShutdown()
	return nil
}

func handleReloadPatterns(ctx *Context) error {
	count, err := ctx.Bot.Pipeline.ReloadPatterns()
	if err != nil {
		return fmt.Errorf("reloading patterns: %w", err)
	}
	ctx.Reply(fmt.Sprintf("Reloaded %d signature rules.", count))
	return nil
}

func handleHost(ctx *Context) error {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	usage := 0.0
	if len(cpuPercent) > 0 {
		usage = cpuPercent[0]
	}

	embed := &discordgo.MessageEmbed{
		Title: "Host Information",
		Color: 3066993,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "OS", Value: fmt.Sprintf("%s %s (%s)", hostInfo.Platform, hostInfo.PlatformVersion, runtime.GOARCH), Inline: false},
			{Name: "CPU", Value: fmt.Sprintf("%d cores, %.1f%% used", cpuCount, usage), Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.1f%% of %d MB", vm.UsedPercent, vm.Total/1024/1024), Inline: true},
			{Name: "Uptime", Value: (time.Duration(hostInfo.Uptime) * time.Second).String(), Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
		},
	}
	ctx.ReplyEmbed(embed)
	return nil
}
