package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/VictoriaMetrics/metrics"
	cmdUtil "github.com/lwalter/unisock/cmd/util"
	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/async"
	"github.com/lwalter/unisock/ipc/blocking"
	"github.com/lwalter/unisock/ipc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig common.Config
	socketName     string
	useAsync       bool
	metricsAddr    string

	ServeCmd = &cobra.Command{
		Use:     "serve",
		Short:   "Start an echo server on a Unix domain socket",
		Long:    `Start an echo server that accepts connections on a Unix domain socket and writes every received message back to its sender. The configuration can be set via command line flags or environment variables. The format of the environment variables is UNISOCK_<flag> (e.g. UNISOCK_BASE_DIR=/run/user/1000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "socket"
	ServeCmd.PersistentFlags().String(key, "echo.sock", cmdUtil.WrapString("Socket name to bind. Relative names are resolved against the base directory"))

	key = "async"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Use the cancellable connection implementation instead of the blocking one"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional address for a Prometheus metrics HTTP endpoint (e.g. localhost:9100). Disabled when empty"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig = cmdUtil.GetConfig()
	socketName = viper.GetString("socket")
	useAsync = viper.GetBool("async")
	metricsAddr = viper.GetString("metrics-endpoint")

	common.InitLoggers(serveCmdConfig)
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Starting echo server")
	fmt.Println(serveCmdConfig.String())

	var (
		ln  ipc.Listener
		err error
	)
	if useAsync {
		ln, err = async.Bind(serveCmdConfig, socketName)
	} else {
		ln, err = blocking.Bind(serveCmdConfig, socketName)
	}
	if err != nil {
		return err
	}
	defer ln.Close()

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	// closing the listener is what unblocks a pending blocking accept
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	if err := ln.Serve(ctx, echoHandler(ctx)); ctx.Err() == nil {
		return err
	}

	fmt.Println("Shutting down")
	return nil
}

// echoHandler serves one connection until its peer disconnects, writing every
// received message back unchanged. Per-connection failures end only that
// connection, the serve loop moves on to the next peer.
func echoHandler(ctx context.Context) ipc.HandlerFunc {
	return func(conn ipc.Conn) error {
		for {
			msg, err := conn.ReadText(ctx)
			if err != nil {
				if !ipc.IsEndOfStream(err) && ctx.Err() == nil {
					fmt.Printf("connection error: %v\n", err)
				}
				return nil
			}
			if err := conn.Send(ctx, []byte(msg)); err != nil {
				fmt.Printf("connection error: %v\n", err)
				return nil
			}
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Printf("metrics endpoint error: %v\n", err)
	}
}
