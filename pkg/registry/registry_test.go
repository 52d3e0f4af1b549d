package registry

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gregtusar/spreadwatch/pkg/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLoadSeedsFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.json")

	reg, err := Load(path, []string{"BTC/USDT", "eth/usdt", "bogus"}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	got := reg.List()
	want := []models.TradingPair{"BTC/USDT", "ETH/USDT"}
	if len(got) != len(want) {
		t.Fatalf("pairs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pairs = %v, want %v", got, want)
		}
	}
}

func TestAddRemovePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.json")

	reg, err := Load(path, []string{"BTC/USDT"}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.Add("SOL/USDT"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add("SOL/USDT"); err == nil {
		t.Fatal("duplicate add succeeded")
	}
	if err := reg.Remove("BTC/USDT"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Remove("BTC/USDT"); err == nil {
		t.Fatal("removing a missing pair succeeded")
	}

	// A fresh load sees the mutations.
	reloaded, err := Load(path, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	got := reloaded.List()
	if len(got) != 1 || got[0] != "SOL/USDT" {
		t.Fatalf("reloaded pairs = %v, want [SOL/USDT]", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.json")
	reg, err := Load(path, []string{"BTC/USDT", "ETH/USDT"}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	list := reg.List()
	list[0] = "XXX/USDT"
	if got := reg.List(); got[0] != "BTC/USDT" {
		t.Fatal("List result aliases internal state")
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, nil, testLogger()); err == nil {
		t.Fatal("expected an error for a corrupt registry file")
	}
}
