package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/libklein/llm-fishtank/fishtank/console"
	"github.com/libklein/llm-fishtank/fishtank/crossclues"
	"github.com/libklein/llm-fishtank/fishtank/llm"
	"github.com/libklein/llm-fishtank/fishtank/spectate"
)

const releaseVersion = "0.2.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, personas []string, out io.Writer) error {
	st, err := cfg.build(personas)
	if err != nil {
		return err
	}
	console.SetColor(!cfg.noColor)
	if cfg.verbose {
		log.Printf("seed=%d model=%s endpoint=%s personas=%v", st.seed, st.llm.Model, st.llm.BaseURL, st.personas)
	}

	printer := console.New(out, cfg.verbose)
	observers := crossclues.Observers{printer}

	var ln net.Listener
	var spectators *spectate.Server
	if cfg.listen != "" {
		if ln, err = net.Listen("tcp", cfg.listen); err != nil {
			return configErr("listen", err)
		}
		spectators = spectate.New()
		observers = append(observers, spectators)
	}

	game, err := crossclues.NewGame(crossclues.Options{
		Personas:  st.personas,
		Grid:      st.grid,
		Completer: llm.New(st.llm),
		Prompts:   st.prompts,
		Rand:      st.rng,
		MaxTurns:  cfg.maxTurns,
		Observer:  observers,
	})
	if err != nil {
		if ln != nil {
			_ = ln.Close()
		}
		return err
	}

	served := make(chan error, 1)
	if spectators != nil {
		go func() { served <- spectators.Serve(ctx, ln) }()
	}

	res, err := game.Play(ctx)
	if err != nil {
		printer.Failure(res, err)
		return err
	}

	if spectators != nil {
		log.Printf("game over; spectator API stays up on %s until interrupted", cfg.listen)
		<-ctx.Done()
		return <-served
	}
	return nil
}
