package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/cloudflare/tableflip"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/bot"
	"github.com/Vousmeveyoz/discord-jixabot/state"
	"github.com/Vousmeveyoz/discord-jixabot/webserver"
)

func serveAPI() {
	r := webserver.CreateWebserver()

	// If GOOS is windows, do normal http server
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		upg, _ := tableflip.New(tableflip.Options{})
		defer upg.Stop()

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGHUP)
			for range sig {
				state.Logger.Info("Received SIGHUP, upgrading server")
				upg.Upgrade()
			}
		}()

		// Listen must be called before Ready
		ln, err := upg.Listen("tcp", ":"+strconv.Itoa(state.Config.Meta.Port))

		if err != nil {
			state.Logger.Fatal("Error binding to socket", zap.Error(err))
		}

		defer ln.Close()

		server := http.Server{
			ReadTimeout: 30 * time.Second,
			Handler:     r,
		}

		go func() {
			err := server.Serve(ln)
			if err != http.ErrServerClosed {
				state.Logger.Error("Server failed due to unexpected error", zap.Error(err))
			}
		}()

		if err := upg.Ready(); err != nil {
			state.Logger.Fatal("Error calling upg.Ready", zap.Error(err))
		}

		<-upg.Exit()
	} else {
		// Tableflip not supported
		state.Logger.Warn("Tableflip not supported on this platform, this is not a production-capable server.")
		err := http.ListenAndServe(":"+strconv.Itoa(state.Config.Meta.Port), r)

		if err != nil {
			state.Logger.Fatal("Error binding to socket", zap.Error(err))
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "help")
	}

	switch os.Args[1] {
	case "webserver":
		state.Setup()

		serveAPI()
	case "bot":
		state.Setup()

		if err := bot.Start(); err != nil {
			state.Logger.Fatal("Error opening Discord gateway", zap.Error(err))
		}

		go serveAPI()

		state.Logger.Info("Bot running, press CTRL-C to exit")

		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT)
		<-c

		state.Logger.Info("Shutting down")

		if err := bot.Stop(); err != nil {
			state.Logger.Error("Error closing Discord session", zap.Error(err))
		}
	default:
		fmt.Println("Jixabot Usage: jixabot <component>")
		fmt.Println("bot: Starts the Discord bot together with the license API")
		fmt.Println("webserver: Starts the license API alone")
		os.Exit(1)
	}
}
