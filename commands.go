package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"faq_matcher/internal/chat"
	"faq_matcher/internal/knowledge"
	"faq_matcher/internal/logger"
	"faq_matcher/internal/sessioncache"
	"faq_matcher/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kb, err := NewKnowledgeCache(cfg.Knowledge.Path, log)
	if err != nil {
		log.WithError(err).Error("Failed to load knowledge base", map[string]interface{}{"file": cfg.Knowledge.Path})
		return err
	}
	defer kb.Close()

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Error("Failed to open database", map[string]interface{}{"driver": cfg.Database.Driver})
		return err
	}
	defer db.Close()

	cache := sessioncache.New(cfg.Redis)
	defer cache.Close()
	if cfg.Redis.Enabled() {
		if err := cache.Ping(ctx); err != nil {
			log.WithError(err).Warn("Session cache unreachable, history will be read from the database", map[string]interface{}{
				"address": cfg.Redis.Address,
			})
		}
	}

	svc := chat.NewService(kb, db, log, chat.WithCache(cache))
	srv := NewServer(cfg, svc, kb, db, cache, log)

	log.Info("Knowledge base loaded", map[string]interface{}{
		"file":       cfg.Knowledge.Path,
		"entries":    kb.Info().Entries,
		"categories": kb.Info().Categories,
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Knowledge.Watch {
		if err := kb.StartWatching(); err != nil {
			log.WithError(err).Warn("Auto-reload disabled", nil)
		} else {
			g.Go(func() error { return kb.WatchFiles(gctx) })
		}
	}

	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		kb.Close()
		log.Info("Shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			kb, err := NewKnowledgeCache(cfg.Knowledge.Path, logger.NewNoOpLogger())
			if err != nil {
				return err
			}

			reply := kb.Process(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(reply)
			}

			fmt.Fprintln(out, reply.Response)
			fmt.Fprintf(out, "\n[faq=%s intent=%s category=%s confidence=%.2f]\n",
				reply.MatchedKey, reply.Intent, reply.Category, reply.Confidence)
			for _, opt := range reply.Options {
				fmt.Fprintf(out, "  > %s\n", opt)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reply as JSON")
	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a knowledge file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.knowledgePath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Knowledge.Path
			}

			base, err := knowledge.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d entries\n", path, base.Len())

			categories := base.Categories()
			names := make([]string, 0, len(categories))
			for name := range categories {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %-20s %d\n", name, categories[name])
			}
			return nil
		},
	}
}
