package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/app"
	"github.com/hamed0406/slotwatch/internal/config"
	"github.com/hamed0406/slotwatch/internal/cowin"
)

func main() {
	cfg := config.FromEnv()
	client := app.NewClient(cfg, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	states, err := client.States(ctx)
	if err != nil {
		fmt.Println("Error contacting CoWIN:", err)
		return
	}
	for _, s := range states {
		fmt.Printf("%4d  %s\n", s.StateID, s.StateName)
	}

	reader := bufio.NewReader(os.Stdin)
	stateID, ok := ask(reader, "Enter a state id: ")
	if !ok || !knownState(states, stateID) {
		fmt.Println("Unknown state id.")
		return
	}

	ds, err := client.Districts(ctx, stateID)
	if err != nil {
		fmt.Println("Error contacting CoWIN:", err)
		return
	}
	for _, d := range ds {
		fmt.Printf("%4d  %s\n", d.DistrictID, d.DistrictName)
	}

	id, ok := ask(reader, "Enter a district id: ")
	if !ok {
		fmt.Println("Invalid district id.")
		return
	}
	for _, d := range ds {
		if d.DistrictID == id {
			fmt.Printf("Add to your .env:\nDISTRICT_ID=%d  # %s\n", id, d.DistrictName)
			return
		}
	}
	fmt.Println("Unknown district id.")
}

func ask(r *bufio.Reader, prompt string) (int, bool) {
	fmt.Print(prompt)
	raw, _ := r.ReadString('\n')
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	return n, err == nil
}

func knownState(states []cowin.State, id int) bool {
	for _, s := range states {
		if s.StateID == id {
			return true
		}
	}
	return false
}
