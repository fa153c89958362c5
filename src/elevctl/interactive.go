package main

import (
	"fmt"
	"time"

	"liftbank/src/command"
	"liftbank/src/network"

	"github.com/eiannone/keyboard"
)

const interactiveHelp = `keys: 1-9 select elevator, s step, a step all, d door, m maintenance,
      n next floor, v direction, r requests, l list, h help, q or Ctrl-C quit`

// keyCommand builds the command for a key press on the selected elevator.
// ok is false for keys that do not send anything.
func keyCommand(char rune, selected int) (command.Command, bool) {
	id := command.Int(selected)
	switch char {
	case 's', 'S':
		return command.Command{Op: command.OpStep, ElevatorID: id}, true
	case 'a', 'A':
		return command.Command{Op: command.OpStepAll}, true
	case 'd', 'D':
		return command.Command{Op: command.OpToggleDoor, ElevatorID: id}, true
	case 'm', 'M':
		return command.Command{Op: command.OpToggleMaintenance, ElevatorID: id}, true
	case 'n', 'N':
		return command.Command{Op: command.OpNextFloor, ElevatorID: id}, true
	case 'v', 'V':
		return command.Command{Op: command.OpDirection, ElevatorID: id}, true
	case 'r', 'R':
		return command.Command{Op: command.OpRequests, ElevatorID: id}, true
	case 'l', 'L':
		return command.Command{Op: command.OpElevators}, true
	}
	return command.Command{}, false
}

func interactive(client *network.Client, timeout time.Duration) error {
	selected := 1
	fmt.Println(interactiveHelp)
	fmt.Printf("elevator %d selected\n", selected)
	for {
		char, key, err := keyboard.GetSingleKey()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		if key == keyboard.KeyCtrlC || char == 'q' || char == 'Q' {
			fmt.Println("Exit")
			return nil
		}
		switch {
		case char >= '1' && char <= '9':
			selected = int(char - '0')
			fmt.Printf("elevator %d selected\n", selected)
			continue
		case char == 'h' || char == 'H':
			fmt.Println(interactiveHelp)
			continue
		}

		cmd, ok := keyCommand(char, selected)
		if !ok {
			continue
		}
		resp, err := send(client, cmd, timeout)
		if err != nil {
			return err
		}
		printResponse(resp)
	}
}
