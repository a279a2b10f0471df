package bench

import (
	"fmt"
	"strings"
	"time"

	cmdUtil "github.com/lwalter/unisock/cmd/util"
	"github.com/lwalter/unisock/ipc/client"
	"github.com/lwalter/unisock/ipc/common"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	benchCmdConfig common.Config
	socketName     string
	requests       int
	payloadSize    int
	wait           bool

	BenchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Benchmark one-shot round trips against a socket",
		Long:    `Send a stream of one-shot messages to a listening socket and report latency statistics. Each request is a full connect-send-receive-close cycle, so the numbers include connection setup cost.`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "socket"
	BenchCmd.PersistentFlags().String(key, "echo.sock", cmdUtil.WrapString("Socket name to benchmark against. Relative names are resolved against the base directory"))

	key = "requests"
	BenchCmd.PersistentFlags().Int(key, 1000, cmdUtil.WrapString("Number of one-shot requests to send"))

	key = "payload-size"
	BenchCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("Size in bytes of each request payload"))

	key = "bench-wait"
	BenchCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Wait for a response on every request. When false only the write is measured"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	benchCmdConfig = cmdUtil.GetConfig()
	socketName = viper.GetString("socket")
	requests = viper.GetInt("requests")
	payloadSize = viper.GetInt("payload-size")
	wait = viper.GetBool("bench-wait")

	common.InitLoggers(benchCmdConfig)
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Benchmarking one-shot round trips")
	fmt.Println(benchCmdConfig.String())
	fmt.Printf("Requests: %d, payload: %d bytes, wait for response: %t\n\n", requests, payloadSize, wait)

	payload := []byte(strings.Repeat("x", payloadSize))
	buf := make([]byte, benchCmdConfig.BufferSize)

	timer := metrics.NewTimer()
	failures := 0

	for i := 0; i < requests; i++ {
		policy := client.DontWaitForResponse()
		if wait {
			policy = client.WaitForResponse(buf)
		}

		timer.Time(func() {
			if _, err := client.SendOneShot(benchCmdConfig, payload, socketName, policy); err != nil {
				failures++
			}
		})
	}

	percentiles := timer.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Printf("Completed: %d, failed: %d\n", timer.Count(), failures)
	fmt.Printf("Throughput: %.0f req/s\n", timer.RateMean())
	fmt.Printf("Latency min/mean/max: %s / %s / %s\n",
		time.Duration(timer.Min()),
		time.Duration(int64(timer.Mean())),
		time.Duration(timer.Max()))
	fmt.Printf("Latency p50/p95/p99: %s / %s / %s\n",
		time.Duration(int64(percentiles[0])),
		time.Duration(int64(percentiles[1])),
		time.Duration(int64(percentiles[2])))

	if failures > 0 {
		return fmt.Errorf("%d of %d requests failed", failures, requests)
	}
	return nil
}
