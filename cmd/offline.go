package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/transitdir/internal/offline"
	"github.com/ziadkadry99/transitdir/internal/progress"
)

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Manage the offline cache",
	Long: `Drives the offline cache worker against the configured storage: precache
the site shell, inspect cache generations, fetch through the cache, or clear it.`,
}

var offlineInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Precache the shell assets and activate the current cache generation",
	Args:  cobra.NoArgs,
	RunE:  runOfflineInstall,
}

var offlineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List cache generations and their contents",
	Args:  cobra.NoArgs,
	RunE:  runOfflineStatus,
}

var offlineClearCmd = &cobra.Command{
	Use:   "clear [cache-name...]",
	Short: "Delete cache generations (all of them when none are named)",
	RunE:  runOfflineClear,
}

var offlineFetchCmd = &cobra.Command{
	Use:   "fetch [path]",
	Short: "Fetch a page through the cache worker (network first, cache fallback)",
	Args:  cobra.ExactArgs(1),
	RunE:  runOfflineFetch,
}

func init() {
	offlineStatusCmd.Flags().Bool("entries", false, "list every cached request")
	offlineFetchCmd.Flags().Bool("offline", false, "simulate a network failure to read from the cache")
	offlineFetchCmd.Flags().BoolP("include", "i", false, "print the response status and headers")

	offlineCmd.AddCommand(offlineInstallCmd, offlineStatusCmd, offlineClearCmd, offlineFetchCmd)
	rootCmd.AddCommand(offlineCmd)
}

func runOfflineInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	worker, err := newWorker(cfg, storage, http.DefaultTransport, progress.NewReporter("Caching shell"))
	if err != nil {
		return err
	}

	host := offline.NewHost(http.DefaultTransport, offlineLogger())
	reg, err := host.Register(cmd.Context(), worker)
	host.Close()
	if err != nil {
		return err
	}

	fmt.Printf("Cache %s %s: %d assets from %s\n", cfg.Offline.CacheName, reg.State, len(cfg.Offline.Manifest), cfg.Offline.Origin)
	return nil
}

// cacheInfo summarises one cache generation.
type cacheInfo struct {
	Name    string
	Entries []offline.Entry
	Size    uint64
	Updated time.Time
	Current bool
}

func summarizeCaches(ctx context.Context, storage offline.Storage, current string) ([]cacheInfo, error) {
	names, err := storage.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing caches: %w", err)
	}

	var out []cacheInfo
	for _, name := range names {
		cache, err := storage.Open(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("opening cache %s: %w", name, err)
		}
		keys, err := cache.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing cache %s: %w", name, err)
		}

		info := cacheInfo{Name: name, Current: name == current}
		for _, key := range keys {
			entry, ok, err := cache.Match(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("reading %s from %s: %w", key, name, err)
			}
			if !ok {
				continue
			}
			info.Entries = append(info.Entries, entry)
			info.Size += uint64(len(entry.Body))
			if entry.StoredAt.After(info.Updated) {
				info.Updated = entry.StoredAt
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func printCaches(w io.Writer, caches []cacheInfo, showEntries bool) {
	if len(caches) == 0 {
		fmt.Fprintln(w, "No offline caches. Run `transitdir offline install` first.")
		return
	}

	t := newTable("CACHE", "ENTRIES", "SIZE", "UPDATED", "")
	for _, c := range caches {
		updated := "never"
		if !c.Updated.IsZero() {
			updated = humanize.Time(c.Updated)
		}
		marker := ""
		if c.Current {
			marker = titleStyle.Render("current")
		}
		t.Row(c.Name, strconv.Itoa(len(c.Entries)), humanize.Bytes(c.Size), updated, marker)
	}
	fmt.Fprintln(w, t.Render())

	if !showEntries {
		return
	}
	for _, c := range caches {
		if len(c.Entries) == 0 {
			continue
		}
		entries := append([]offline.Entry(nil), c.Entries...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key.URL < entries[j].Key.URL })

		fmt.Fprintln(w, titleStyle.Render(c.Name))
		et := newTable("REQUEST", "STATUS", "SIZE", "STORED")
		for _, e := range entries {
			et.Row(e.Key.String(), strconv.Itoa(e.Status), humanize.Bytes(uint64(len(e.Body))), humanize.Time(e.StoredAt))
		}
		fmt.Fprintln(w, et.Render())
	}
}

func runOfflineStatus(cmd *cobra.Command, args []string) error {
	showEntries, _ := cmd.Flags().GetBool("entries")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	caches, err := summarizeCaches(cmd.Context(), storage, cfg.Offline.CacheName)
	if err != nil {
		return err
	}
	printCaches(os.Stdout, caches, showEntries)
	return nil
}

func clearCaches(ctx context.Context, storage offline.Storage, names []string) ([]string, error) {
	if len(names) == 0 {
		var err error
		if names, err = storage.Keys(ctx); err != nil {
			return nil, fmt.Errorf("listing caches: %w", err)
		}
	}

	var deleted []string
	var errs []error
	for _, name := range names {
		existed, err := storage.Delete(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", name, err))
			continue
		}
		if existed {
			deleted = append(deleted, name)
		}
	}
	return deleted, errors.Join(errs...)
}

func runOfflineClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	deleted, err := clearCaches(cmd.Context(), storage, args)
	for _, name := range deleted {
		fmt.Printf("Deleted cache %s\n", name)
	}
	if len(deleted) == 0 && err == nil {
		fmt.Println("Nothing to delete.")
	}
	return err
}

// errNetworkDisabled is returned by the transport used for --offline.
var errNetworkDisabled = errors.New("network disabled (--offline)")

type disabledTransport struct{}

func (disabledTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errNetworkDisabled
}

func runOfflineFetch(cmd *cobra.Command, args []string) error {
	simulateOffline, _ := cmd.Flags().GetBool("offline")
	include, _ := cmd.Flags().GetBool("include")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	origin, err := cfg.OriginURL()
	if err != nil {
		return err
	}
	ref, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", args[0], err)
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	var network http.RoundTripper = http.DefaultTransport
	if simulateOffline {
		network = disabledTransport{}
	}
	worker, err := newWorker(cfg, storage, network, nil)
	if err != nil {
		return err
	}
	defer worker.Wait()

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, origin.ResolveReference(ref).String(), nil)
	if err != nil {
		return err
	}
	ev := offline.NewFetchEvent(req)
	if err := worker.Dispatch(cmd.Context(), ev); err != nil {
		return err
	}
	resp, err := ev.Result()
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if include {
		fmt.Fprintf(os.Stderr, "%s %s\n", resp.Proto, resp.Status)
		resp.Header.Write(os.Stderr)
		fmt.Fprintln(os.Stderr)
	}
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}
