// Command elevctl sends commands to a liftbank server over QUIC.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"liftbank/src/command"
	"liftbank/src/config"
	"liftbank/src/network"
)

// subcommand maps a CLI verb to an op and the names of its integer arguments.
type subcommand struct {
	op   command.Op
	args []string
}

var subcommands = map[string]subcommand{
	"init":        {command.OpInitialize, []string{"count"}},
	"dispatch":    {command.OpDispatch, []string{"pickup", "destination"}},
	"requests":    {command.OpRequests, []string{"id"}},
	"next":        {command.OpNextFloor, []string{"id"}},
	"direction":   {command.OpDirection, []string{"id"}},
	"step":        {command.OpStep, []string{"id"}},
	"door":        {command.OpToggleDoor, []string{"id"}},
	"maintenance": {command.OpToggleMaintenance, []string{"id"}},
	"elevators":   {command.OpElevators, nil},
	"elevator":    {command.OpElevator, []string{"id"}},
	"step-all":    {command.OpStepAll, nil},
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: elevctl [-addr host:port] [-timeout d] <command> [args]

commands:
  init <count>                    create a fresh fleet
  dispatch <pickup> <destination> submit a request
  requests <id>                   list an elevator's requests
  next <id>                       next target floor
  direction <id>                  direction toward the next target
  step <id>                       move one leg
  door <id>                       toggle the door
  maintenance <id>                toggle maintenance
  elevators                       list the fleet
  elevator <id>                   show one elevator
  step-all                        step every elevator that can move
  interactive                     drive the fleet from the keyboard
`)
	flag.PrintDefaults()
}

func main() {
	addr := flag.String("addr", "localhost"+config.DefaultQUICAddr, "server QUIC address")
	timeout := flag.Duration("timeout", config.CommandTimeout, "per-command timeout")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), *timeout)
	client, err := network.Dial(dialCtx, *addr)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	if flag.Arg(0) == "interactive" {
		if err := interactive(client, *timeout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cmd, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}
	resp, err := send(client, cmd, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printResponse(resp)
	if !resp.OK {
		client.Close()
		os.Exit(1)
	}
}

func parseArgs(args []string) (command.Command, error) {
	sub, ok := subcommands[args[0]]
	if !ok {
		return command.Command{}, fmt.Errorf("unknown command %q", args[0])
	}
	if len(args)-1 != len(sub.args) {
		return command.Command{}, fmt.Errorf("%s takes %d argument(s), got %d", args[0], len(sub.args), len(args)-1)
	}

	cmd := command.Command{Op: sub.op}
	for i, name := range sub.args {
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			return command.Command{}, fmt.Errorf("%s: %q is not an integer", name, args[i+1])
		}
		switch name {
		case "count":
			cmd.Count = command.Int(n)
		case "pickup":
			cmd.Pickup = command.Int(n)
		case "destination":
			cmd.Destination = command.Int(n)
		case "id":
			cmd.ElevatorID = command.Int(n)
		}
	}
	return cmd, nil
}

func send(client *network.Client, cmd command.Command, timeout time.Duration) (command.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Do(ctx, cmd)
}

func printResponse(resp command.Response) {
	if !resp.OK {
		fmt.Printf("error %d %s: %s\n", resp.Status, resp.Kind, resp.Error)
		return
	}
	out, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		fmt.Println(resp.Data)
		return
	}
	fmt.Println(string(out))
}
