package send

import (
	"fmt"

	cmdUtil "github.com/lwalter/unisock/cmd/util"
	"github.com/lwalter/unisock/ipc/client"
	"github.com/lwalter/unisock/ipc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	sendCmdConfig common.Config
	socketName    string
	wait          bool
	responseSize  int

	SendCmd = &cobra.Command{
		Use:     "send <message>",
		Short:   "Send a one-shot message to a Unix domain socket",
		Long:    `Send a single message to a listening socket and optionally print the response. Each invocation dials a fresh connection and closes it when done; no state is carried between calls.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "socket"
	SendCmd.PersistentFlags().String(key, "echo.sock", cmdUtil.WrapString("Socket name to send to. Relative names are resolved against the base directory"))

	key = "wait"
	SendCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Wait for a response after sending. When false the command returns as soon as the payload is written"))

	key = "response-buffer"
	SendCmd.PersistentFlags().Int(key, 512, cmdUtil.WrapString("Size in bytes of the response buffer. Larger responses are truncated"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	sendCmdConfig = cmdUtil.GetConfig()
	socketName = viper.GetString("socket")
	wait = viper.GetBool("wait")
	responseSize = viper.GetInt("response-buffer")

	common.InitLoggers(sendCmdConfig)
	return nil
}

func run(_ *cobra.Command, args []string) error {
	policy := client.DontWaitForResponse()
	var buf []byte
	if wait {
		buf = make([]byte, responseSize)
		policy = client.WaitForResponse(buf)
	}

	n, err := client.SendOneShot(sendCmdConfig, []byte(args[0]), socketName, policy)
	if err != nil {
		return err
	}

	if wait {
		fmt.Printf("%s\n", buf[:n])
	}
	return nil
}
