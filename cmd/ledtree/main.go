//go:build rp2040

// Command ledtree is the RP2040 firmware: five breathing channels on
// GP16..GP20, a brightness knob on ADC0, the shell on UART0 and the
// indicator on the board LED.
package main

import (
	"context"
	_ "embed"
	"machine"
	"math/rand"
	"strings"
	"time"

	"ledtree-go/errcode"
	"ledtree-go/platform"
	"ledtree-go/services/heartbeat"
	"ledtree-go/services/knob"
	"ledtree-go/services/leds"
	"ledtree-go/services/settings"
	"ledtree-go/services/shell"
)

//go:embed config.ini
var configINI string

var build = "dev"

const appName = "LedTree"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(1500 * time.Millisecond)
	println("[main]", appName, build)

	ctx := context.Background()
	hb := heartbeat.New(platform.NewPin(machine.LED), heartbeat.Normal)
	_ = hb.Start(ctx)

	st, err := settings.Parse(strings.NewReader(configINI))
	if err != nil {
		println("[main] settings:", err.Error())
		if errcode.Is(err, errcode.BadValue) {
			hb.SetPattern(heartbeat.Degraded)
		}
	}

	outs, err := newOutputs()
	if err != nil {
		println("[main] outputs:", err.Error())
		fatal(hb)
	}

	eng, err := leds.New(outs, leds.Config{
		Limits: st.Limits(),
		Rand:   rand.New(rand.NewSource(platform.Seed())),
	})
	if err != nil {
		println("[main] engine:", err.Error())
		fatal(hb)
	}
	eng.Start(ctx)

	_ = knob.New(platform.NewADC(machine.ADC0), eng, knob.Config{}).Start(ctx)

	con := platform.NewConsole(ctx, 115200, machine.UART0_TX_PIN, machine.UART0_RX_PIN)
	sh := shell.New(eng, shell.Info{App: appName, Build: build})
	for {
		if err := sh.Serve(ctx, con); err != nil {
			println("[shell] restart:", err.Error())
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// fatal parks the board with the error pattern running.
func fatal(hb *heartbeat.Service) {
	hb.SetPattern(heartbeat.Fatal)
	select {}
}
