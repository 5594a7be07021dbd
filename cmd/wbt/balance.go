package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/EvanJRichard/wallet-balance-tool/internal/config"
	"github.com/EvanJRichard/wallet-balance-tool/internal/core/application"
	"github.com/EvanJRichard/wallet-balance-tool/internal/core/domain"
	"github.com/EvanJRichard/wallet-balance-tool/internal/infrastructure/explorer/esplora"
	"github.com/EvanJRichard/wallet-balance-tool/pkg/xpub"
)

var balance = cli.Command{
	Name:  "balance",
	Usage: "derive receive and change addresses from an extended public key and sum their confirmed balances",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "key",
			Usage:    "the extended public key to watch (xpub/ypub/zpub/tpub/upub/vpub)",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "batch",
			Usage: "number of addresses derived per branch before fetching, overrides the configured default",
		},
		&cli.BoolFlag{
			Name:  "interactive",
			Usage: "keep the session open and derive more addresses on demand",
		},
	},
	Action: balanceAction,
}

func balanceAction(ctx *cli.Context) error {
	key, err := xpub.Parse(ctx.String("key"))
	if err != nil {
		return err
	}
	parentKey, err := domain.NewKeyMaterial(
		key.PublicKey[:], key.ChainCode[:], key.Depth, key.ParentFingerprint[:],
	)
	if err != nil {
		return err
	}

	netParams := key.Network()
	log.Debugf("watching %s on %s", key.Normalized(), netParams.Name)

	explorerSvc, err := esplora.NewService(esplora.ServiceOpts{
		APIURL:            apiURL(netParams),
		RequestTimeout:    config.GetDuration(config.RequestTimeoutKey),
		RequestsPerSecond: config.GetInt(config.RequestsPerSecondKey),
	})
	if err != nil {
		return err
	}

	initialBatch := config.GetUint32(config.InitialBatchKey)
	if ctx.Uint("batch") > 0 {
		initialBatch = uint32(ctx.Uint("batch"))
	}

	balanceSvc, err := application.NewBalanceService(application.NewBalanceServiceOpts{
		ParentKey:             parentKey,
		Encoder:               domain.NewP2WPKHEncoder(netParams),
		ExplorerSvc:           explorerSvc,
		InitialBatch:          initialBatch,
		LoadMoreIncrement:     config.GetUint32(config.LoadMoreIncrementKey),
		MaxConcurrentRequests: config.GetInt(config.MaxConcurrentRequestsKey),
	})
	if err != nil {
		return err
	}

	appCtx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	if _, err := balanceSvc.Refresh(appCtx); err != nil {
		return err
	}
	printDisplayState(balanceSvc.DisplayState())

	if !ctx.Bool("interactive") {
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for balanceSvc.DisplayState().CanLoadMore {
		fmt.Print("press enter to load more addresses, q to quit: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if strings.TrimSpace(scanner.Text()) == "q" {
			return nil
		}
		if _, err := balanceSvc.LoadMore(appCtx); err != nil {
			return err
		}
		printDisplayState(balanceSvc.DisplayState())
	}
	return nil
}

func apiURL(netParams *chaincfg.Params) string {
	baseURL := strings.TrimSuffix(
		config.GetString(config.ExplorerEndpointKey), "/",
	)
	if netParams.Name == chaincfg.TestNet3Params.Name {
		return baseURL + "/testnet/api"
	}
	return baseURL + "/api"
}

func printDisplayState(state *application.DisplayState) {
	for _, entry := range state.Addresses {
		if entry.State == application.AddressStateConfirmed {
			fmt.Printf("%-8s %-44s %s BTC\n",
				entry.DerivationPath, entry.Address, entry.AmountBTC)
			continue
		}
		fmt.Printf("%-8s %-44s %s\n",
			entry.DerivationPath, entry.Address, entry.State)
	}
	if state.TotalIsLowerBound {
		fmt.Printf("total: at least %s BTC (%d addresses failed to resolve)\n",
			state.TotalBTC, state.FailedCount)
		return
	}
	fmt.Printf("total: %s BTC\n", state.TotalBTC)
}
