package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"monad-tipbot-go/internal/common"
	"monad-tipbot-go/internal/config"
	"monad-tipbot-go/internal/giveaway"
	"monad-tipbot-go/internal/ledger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// consoleNotifier renders giveaway lifecycle events on stdout. A chat
// platform adapter would implement giveaway.Notifier the same way.
type consoleNotifier struct{}

func (consoleNotifier) GiveawayOpened(chatId int64, amount decimal.Decimal, deadline time.Time) {
	fmt.Printf("[chat %d] Giveaway open: %s MON, closes %s\n",
		chatId, amount.String(), deadline.Format("15:04:05"))
}

func (consoleNotifier) GiveawayClosed(result giveaway.Result) {
	if result.Participants == 0 {
		fmt.Printf("[chat %d] Giveaway closed with no entries\n", result.ChatId)
		return
	}
	if result.Err != nil {
		fmt.Printf("[chat %d] Giveaway payout to @%s failed: %v\n",
			result.ChatId, result.Winner, result.Err)
		return
	}
	fmt.Printf("[chat %d] Giveaway won by @%s (%d entries, tx %s)\n",
		result.ChatId, result.Winner, result.Participants, result.Receipt.PrincipalTx)
}

// dispatcher translates one feed line into an engine or giveaway call.
//
//	tip <from_user> <to_username> <amount>
//	gstart <chat_id> <from_user> <amount>
//	msg <chat_id> <identity> <text...>
type dispatcher struct {
	services *common.Services
	giveaway *giveaway.Manager
}

func (d *dispatcher) handleLine(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "tip":
		if len(fields) != 4 {
			fmt.Println("usage: tip <from_user> <to_username> <amount>")
			return
		}
		d.handleTip(ctx, fields[1], fields[2], fields[3])
	case "gstart":
		if len(fields) != 4 {
			fmt.Println("usage: gstart <chat_id> <from_user> <amount>")
			return
		}
		d.handleGiveawayStart(ctx, fields[1], fields[2], fields[3])
	case "msg":
		if len(fields) < 4 {
			fmt.Println("usage: msg <chat_id> <identity> <text...>")
			return
		}
		d.handleMessage(fields[1], fields[2], strings.Join(fields[3:], " "))
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
}

func (d *dispatcher) handleTip(ctx context.Context, fromUser, toUsername, amountStr string) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		fmt.Printf("invalid amount: %s\n", amountStr)
		return
	}

	sender, err := d.services.Funding.GetOrCreate(ctx, fromUser)
	if err != nil {
		zap.L().Error("Failed to resolve funding wallet",
			zap.String("from", fromUser), zap.Error(err))
		return
	}

	receipt, err := d.services.Engine.Settle(ctx, sender, ledger.NormalizeKey(toUsername), amount, nil)
	if err != nil {
		zap.L().Error("Tip failed",
			zap.String("from", fromUser),
			zap.String("to", toUsername),
			zap.Error(err))
		if receipt == nil {
			fmt.Printf("tip failed: %v\n", err)
			return
		}
	}
	fmt.Printf("tipped @%s %s MON (tx %s)\n",
		receipt.ToUsername, receipt.Amount.String(), receipt.PrincipalTx)
}

func (d *dispatcher) handleGiveawayStart(ctx context.Context, chatIdStr, fromUser, amountStr string) {
	chatId, err := strconv.ParseInt(chatIdStr, 10, 64)
	if err != nil {
		fmt.Printf("invalid chat id: %s\n", chatIdStr)
		return
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		fmt.Printf("invalid amount: %s\n", amountStr)
		return
	}

	sender, err := d.services.Funding.GetOrCreate(ctx, fromUser)
	if err != nil {
		zap.L().Error("Failed to resolve funding wallet",
			zap.String("from", fromUser), zap.Error(err))
		return
	}

	if _, err := d.giveaway.Start(ctx, chatId, sender, amount); err != nil {
		fmt.Printf("giveaway not started: %v\n", err)
	}
}

func (d *dispatcher) handleMessage(chatIdStr, identity, text string) {
	chatId, err := strconv.ParseInt(chatIdStr, 10, 64)
	if err != nil {
		fmt.Printf("invalid chat id: %s\n", chatIdStr)
		return
	}
	d.giveaway.HandleMessage(chatId, identity, text)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting tipbot daemon")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	triggers, err := common.LoadTriggerWords(cfg.Giveaway.TriggersFile)
	if err != nil {
		zap.L().Fatal("Failed to load trigger words", zap.Error(err))
	}
	zap.L().Info("Trigger words loaded", zap.Strings("triggers", triggers))

	manager := giveaway.NewManager(services.Engine, consoleNotifier{}, cfg.Giveaway, triggers, nil)
	d := &dispatcher{services: services, giveaway: manager}

	// Feed lines arrive on stdin; a platform integration would replace this
	// loop with its own update stream.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	zap.L().Info("Tipbot running; reading commands from stdin")
	fmt.Println("commands: tip <from> <to> <amount> | gstart <chat> <from> <amount> | msg <chat> <identity> <text>")

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				zap.L().Info("Input stream closed, shutting down")
				return
			}
			d.handleLine(ctx, line)
		case <-sigChan:
			zap.L().Info("Shutdown signal received, stopping")
			return
		}
	}
}
