package rewardservice

import (
	"math/rand/v2"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

// WeightedPicker draws a reward with probability proportional to its weight,
// or uniformly when no weights are configured.
type WeightedPicker struct {
	intN func(n int64) int64
}

func NewWeightedPicker() *WeightedPicker {
	return &WeightedPicker{intN: rand.Int64N}
}

func (p *WeightedPicker) Pick(rewards []money.Cents, weights []int64) money.Cents {
	if len(weights) != len(rewards) {
		return rewards[p.intN(int64(len(rewards)))]
	}
	var total int64
	for _, w := range weights {
		total += w
	}
	r := p.intN(total)
	for i, w := range weights {
		if r < w {
			return rewards[i]
		}
		r -= w
	}
	return rewards[len(rewards)-1]
}
