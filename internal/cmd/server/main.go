package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spec-sec/securechat/internal/chat"
	"github.com/spec-sec/securechat/internal/params"
)

// DefaultPort is the application's debug port, matching the reference
// deployment.
const DefaultPort = 39482

var (
	host       string
	port       int
	dhBits     int
	groupCache string
	useDefault bool
)

func main() {
	root := &cobra.Command{
		Use:   "securechat-server",
		Short: "Relay server for DH-keyed encrypted chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	root.Flags().StringVar(&host, "host", "127.0.0.1", "address to bind")
	root.Flags().IntVar(&port, "port", DefaultPort, "port to listen on")
	root.Flags().IntVar(&dhBits, "dh-bits", params.DefaultBits, "size of the DH prime in bits")
	root.Flags().StringVar(&groupCache, "group-cache", "securechat-groups.db", "path of the generated-group cache")
	root.Flags().BoolVar(&useDefault, "default-group", false, "use the RFC 3526 2048-bit group instead of generating one")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	group, err := loadGroup()
	if err != nil {
		return err
	}

	srv, err := chat.NewServer(fmt.Sprintf("%s:%d", host, port), group)
	if err != nil {
		return err
	}
	log.Printf("listening on %s", srv.Addr())

	// ^C triggers an orderly shutdown: every registered session is torn
	// down before the listener closes.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down")
		srv.Close()
	}()

	return srv.Run()
}

// loadGroup resolves the server's DH group: the well-known default, a
// cached generated group, or a freshly generated one saved for next time.
func loadGroup() (params.Group, error) {
	if useDefault {
		if dhBits != params.DefaultBits {
			return params.Group{}, fmt.Errorf("the default group is %d bits", params.DefaultBits)
		}
		return params.DefaultGroup(), nil
	}

	store, err := params.OpenStore(groupCache)
	if err != nil {
		return params.Group{}, err
	}
	defer store.Close()

	group, err := store.Load(dhBits)
	if err == nil {
		log.Printf("using cached %d-bit group", dhBits)
		return group, nil
	}
	if !errors.Is(err, params.ErrNotFound) {
		return params.Group{}, err
	}

	log.Printf("generating a %d-bit prime...", dhBits)
	group, err = params.Generate(context.Background(), dhBits)
	if err != nil {
		return params.Group{}, err
	}
	log.Println("done")

	if err := store.Save(group); err != nil {
		return params.Group{}, err
	}
	return group, nil
}
