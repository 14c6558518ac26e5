package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/auroraview/auroraview"
	"github.com/auroraview/auroraview/internal/config"
	"github.com/auroraview/auroraview/internal/logging"
	"github.com/auroraview/auroraview/internal/runtime"
	"github.com/spf13/cobra"
)

var runLog = logging.For("cli")

var (
	runURL       string
	runHTMLFile  string
	runHeadless  bool
	runWait      bool
	runParentHex string
	runChild     bool
	runWidth     int
	runHeight    int
	runTitle     string
	runAssetRoot string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create and show one Instance, standalone or headless",
	Long: `run constructs one Instance from the resolved host defaults plus any
flags, loads a URL or an HTML file, and drives it to completion. With
--parent it behaves like a DCC host embedding the runtime in an existing
native window; without it, it resolves StandaloneBlocking or
StandaloneThreaded depending on --wait.`,
	RunE: runRunE,
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "URL to load")
	runCmd.Flags().StringVar(&runHTMLFile, "html-file", "", "path to an HTML file to load as inline content")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "force IpcOnlyHeadless regardless of --parent/--wait")
	runCmd.Flags().BoolVar(&runWait, "wait", true, "block the calling goroutine until the instance closes (StandaloneBlocking vs StandaloneThreaded)")
	runCmd.Flags().StringVar(&runParentHex, "parent", "", "parent window handle in hex, e.g. 0x1a2b3c, simulating host embedding")
	runCmd.Flags().BoolVar(&runChild, "child", false, "when --parent is set, parent as a true child window instead of owner")
	runCmd.Flags().IntVar(&runWidth, "width", 0, "window width (0 uses the configured default)")
	runCmd.Flags().IntVar(&runHeight, "height", 0, "window height (0 uses the configured default)")
	runCmd.Flags().StringVar(&runTitle, "title", "", "window title")
	runCmd.Flags().StringVar(&runAssetRoot, "asset-root", "", "directory served under the auroraview:// scheme")
}

func runRunE(cmd *cobra.Command, _ []string) error {
	hd := config.Get()

	var parentHandle uintptr
	if runParentHex != "" {
		v, err := strconv.ParseUint(strings.TrimPrefix(runParentHex, "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("--parent: %w", err)
		}
		parentHandle = uintptr(v)
	}

	parentMode := runtime.ParentOwner
	if runChild {
		parentMode = runtime.ParentChild
	}

	cfg := auroraview.Config{
		Title:             firstNonEmptyFlag(runTitle, hd.Title),
		Width:             runWidth,
		Height:            runHeight,
		Resizable:         hd.Resizable,
		Decorations:       hd.Decorations,
		Debug:             hd.Debug,
		ContextMenu:       hd.ContextMenu,
		AssetRoot:         firstNonEmptyFlag(runAssetRoot, hd.AssetRoot),
		AllowFileProtocol: hd.AllowFileProtocol,
		ParentHandle:      parentHandle,
		ParentMode:        parentMode,
		JSCallTimeoutMs:   hd.JSCallTimeoutMs,
		MaxTasksPerTick:   hd.MaxTasksPerTick,
		WakeBatchMs:       hd.WakeBatchMs,
		Wait:              runWait,
		PackedHeadless:    runHeadless,
	}

	closed := make(chan runtime.CloseReason, 1)
	hooks := auroraview.LifecycleHooks{
		OnReady: func() { runLog.Info("instance ready") },
		OnClose: func(reason runtime.CloseReason) {
			runLog.Info("instance closing: %s", reason)
			select {
			case closed <- reason:
			default:
			}
		},
	}

	inst := auroraview.New(cfg, hooks)
	runLog.Info("resolved mode: %s", inst.Mode())

	if runHTMLFile != "" {
		body, err := os.ReadFile(runHTMLFile)
		if err != nil {
			return fmt.Errorf("read --html-file: %w", err)
		}
		if err := inst.SetHTML(string(body), ""); err != nil {
			return err
		}
	} else if runURL != "" {
		if err := inst.SetURL(runURL); err != nil {
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		runLog.Info("received interrupt, requesting close")
		inst.Close()
	}()
	defer signal.Stop(sigCh)

	if err := inst.Show(); err != nil {
		return fmt.Errorf("show: %w", err)
	}

	if inst.Mode().OwnsEventLoop() {
		// StandaloneBlocking already ran to completion inside Show; for
		// StandaloneThreaded, wait here for the background loop to finish.
		if inst.Mode() == runtime.StandaloneThreaded {
			waitForClose(cmd.Context(), inst, closed)
		}
		return nil
	}

	// HostEmbedded / IpcOnlyHeadless: this binary is standing in for the
	// host's own tick source, so drive ProcessEvents itself.
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for {
		if inst.ProcessEvents() {
			return nil
		}
		select {
		case <-ticker.C:
		case <-cmd.Context().Done():
			inst.Close()
		}
	}
}

func waitForClose(ctx context.Context, inst *auroraview.Instance, closed <-chan runtime.CloseReason) {
	for {
		select {
		case <-closed:
		case <-ctx.Done():
		case <-time.After(50 * time.Millisecond):
		}
		if inst.State() == runtime.Destroyed {
			return
		}
	}
}

func firstNonEmptyFlag(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
