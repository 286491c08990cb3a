package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"fairtable-server/internal/app"
	"fairtable-server/internal/config"
	"fairtable-server/internal/jwt"
	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/deck"
	"fairtable-server/pkg/fairness"
	"fairtable-server/pkg/mines"
)

var command = flag.String("c", "verify", "specifies the command (verify, purge, token)")
var game = flag.String("game", blackjack.Name, "the game to verify (blackjack, mines)")
var minesCount = flag.Int("mines", 3, "the number of mines on the board")
var userID = flag.Int64("user", 0, "the user to sign a token for")

func main() {
	flag.Parse()
	cfg := config.Instance()

	switch *command {
	case "verify":
		serverSeed := getSecret("Server seed")
		if serverSeed == "" {
			os.Exit(1)
		}

		clientSeed, err := getInput("Client seed")
		if err != nil {
			logrus.WithError(err).Fatal("could not get answer")
		}

		nonceStr, err := getInput("Nonce")
		if err != nil {
			logrus.WithError(err).Fatal("could not get answer")
		}

		nonce, err := strconv.ParseInt(nonceStr, 10, 64)
		if err != nil {
			logrus.WithError(err).Fatal("nonce must be a number")
		}

		if err := printVerification(os.Stdout, *game, serverSeed, clientSeed, nonce, cfg.Blackjack.Decks, *minesCount); err != nil {
			logrus.WithError(err).Fatal("could not verify")
		}
	case "purge":
		st, err := app.OpenStore(cfg, false)
		if err != nil {
			logrus.WithError(err).Fatal("could not open store")
		}

		n, err := app.New(cfg, st, quartz.NewReal()).Purge(context.Background())
		if err != nil {
			logrus.WithError(err).Fatal("could not purge rounds")
		}

		fmt.Printf("Purged %d rounds\n", n)
	case "token":
		if err := jwt.LoadKeys(cfg.JWT.PublicKey, cfg.JWT.PrivateKey); err != nil {
			logrus.WithError(err).Fatal("could not load JWT keys")
		}

		token, err := jwt.Sign(*userID)
		if err != nil {
			logrus.WithError(err).Fatal("could not sign token")
		}

		fmt.Println(token)
	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

// printVerification recomputes what a round dealt from its revealed seeds
func printVerification(w io.Writer, gameName, serverSeed, clientSeed string, nonce int64, decks, minesCount int) error {
	finalHash := fairness.Combine(serverSeed, clientSeed, nonce)
	_, _ = fmt.Fprintf(w, "Hashed server seed: %s\n", fairness.Hash(serverSeed))
	_, _ = fmt.Fprintf(w, "Final hash:         %s\n", finalHash)

	switch gameName {
	case blackjack.Name:
		if decks < 1 {
			decks = 1
		}

		shoe := deck.NewShoe(finalHash, decks)
		cards := make([]*deck.Card, shoe.Len())
		for i := range cards {
			cards[i] = shoe.At(i)
		}

		_, _ = fmt.Fprintf(w, "Shoe:               %s\n", deck.CardsToString(cards))
	case mines.Name:
		board, err := mines.NewBoard(finalHash, minesCount)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "Mines:              %v\n", board.Mines)
		labels := board.Labels()
		for row := 0; row < 5; row++ {
			cells := make([]string, 5)
			for col := range cells {
				cells[col] = "."
				if labels[row*5+col] == mines.LabelMine {
					cells[col] = "*"
				}
			}

			_, _ = fmt.Fprintf(w, "  %s\n", strings.Join(cells, " "))
		}
	default:
		return fmt.Errorf("unknown game: %s", gameName)
	}

	return nil
}

func getSecret(question string) string {
	fmt.Printf("%s: ", question)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println("")
	if err != nil {
		logrus.WithError(err).Warn("could not read secret")
		return ""
	}

	return strings.TrimSpace(string(b))
}

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	reader := bufio.NewReader(os.Stdin)
	str, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	str = strings.TrimRight(str, "\r\n")

	return str, nil
}
