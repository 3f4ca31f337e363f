package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAliases(t *testing.T) {
	aliases := buildAliases("BTC", "Bitcoin")
	assert.Contains(t, aliases, "btc")
	assert.Contains(t, aliases, "bitcoin")
	assert.Contains(t, aliases, "xbt")

	// Unknown ticker still matches on its own symbol and listing name.
	aliases = buildAliases("ZZZ", "Zig Zag Zone")
	assert.Equal(t, []string{"zzz", "zig zag zone"}, aliases)
}

func TestMatchesAliasTokenizesShortTickers(t *testing.T) {
	aliases := buildAliases("SOL", "Solana")

	assert.True(t, matchesAlias("SOL breaks out of its range", aliases))
	assert.True(t, matchesAlias("$SOL looking strong", aliases))
	assert.True(t, matchesAlias("Solana validators upgrade", aliases))

	// Substring hits inside unrelated words must not count.
	assert.False(t, matchesAlias("gasoline prices rise", aliases))
	assert.False(t, matchesAlias("absolute chaos in markets", aliases))
}

func TestMatchesAliasContainmentForLongNames(t *testing.T) {
	aliases := buildAliases("LINK", "Chainlink")
	assert.True(t, matchesAlias("chainlink oracle adoption grows", aliases))
	// "LINK" is a 4-char ticker, so token matching applies.
	assert.True(t, matchesAlias("LINK jumps 12%", aliases))
	assert.False(t, matchesAlias("hyperlinked articles trending", aliases))
}

func TestIsSpam(t *testing.T) {
	assert.True(t, isSpam("Massive GIVEAWAY: claim your free tokens now"))
	assert.True(t, isSpam("Join the presale whitelist"))
	assert.True(t, isSpam("This 100x gem is ready"))
	assert.False(t, isSpam("Bitcoin closes above the 200-day average"))
}

func TestIsLeveragedBase(t *testing.T) {
	leveraged := []string{"BTCUP", "ETHDOWN", "ADABULL", "XRPBEAR", "SOL3L", "DOT5S"}
	for _, base := range leveraged {
		assert.True(t, IsLeveragedBase(base), base)
	}
	clean := []string{"BTC", "ETH", "UP", "DOWN", "BULL", "PEPE"}
	for _, base := range clean {
		assert.False(t, IsLeveragedBase(base), base)
	}
}
