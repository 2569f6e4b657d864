package main

import (
	"flag"
	"log"
	"math/big"
	"os"

	"bitbucket.org/ventureslash/go-slash-governance/crypto"
	"bitbucket.org/ventureslash/go-slash-governance/governance"
	"bitbucket.org/ventureslash/go-slash-governance/wallet"
	"github.com/google/logger"
)

// defaultMaxSupply is one million credits in 18 decimal base units
const defaultMaxSupply = "1000000000000000000000000"

func main() {
	dbFile := flag.String("db", "slash-governance.db", "path of the audit journal database")
	walletFile := flag.String("wallet", "slash-governance.wallet", "path of the member wallet")
	maxSupply := flag.String("max-supply", defaultMaxSupply, "credit supply cap in base units")
	flag.Parse()

	logger.SetFlags(log.Lshortfile | log.Lmicroseconds)

	privkey, err := wallet.New(*walletFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Print("member address: ", crypto.PubkeyToAddress(privkey.PublicKey))

	supplyCap, ok := new(big.Int).SetString(*maxSupply, 10)
	if !ok {
		log.Fatal("invalid max supply: ", *maxSupply)
	}

	port := os.Getenv("EP_PORT")
	if port == "" {
		port = "8080"
	}

	gov, err := governance.New(&governance.Config{
		MaxSupply:    supplyCap,
		DBFile:       *dbFile,
		EndpointAddr: ":" + port,
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Print("new governance ledger created")
	log.Print("configured to run on port: " + port)
	gov.Start()
}
