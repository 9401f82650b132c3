package rail

import (
	"errors"
	"math/rand"

	"github.com/phj1120/vibe-pay-sub000/internal/logger"
)

// Rand 随机源（可注入，保证路由可测试）
type Rand interface {
	Intn(n int) int
}

// Provider 加权路由的候选PG公司
type Provider struct {
	PgTypeCode string
	Weight     int
}

// WeightSelector PG公司加权随机选择器
type WeightSelector struct {
	providers []Provider
	total     int
	rnd       Rand
}

// NewWeightSelector 创建加权随机选择器，providers 顺序固定
func NewWeightSelector(providers []Provider, rnd Rand) (*WeightSelector, error) {
	total := 0
	for _, p := range providers {
		if p.Weight < 0 {
			return nil, errors.New("provider weight must not be negative")
		}
		total += p.Weight
	}
	if total <= 0 {
		return nil, errors.New("total provider weight must be positive")
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &WeightSelector{providers: providers, total: total, rnd: rnd}, nil
}

// Select 按权重选择PG公司：在 [1,total] 之间取随机数，
// 返回累计权重首次达到该值的公司
func (s *WeightSelector) Select() string {
	draw := s.rnd.Intn(s.total) + 1

	cumulative := 0
	for _, p := range s.providers {
		cumulative += p.Weight
		if cumulative >= draw {
			logger.Debug("PG selected by weight. pgTypeCode=%s, draw=%d, total=%d", p.PgTypeCode, draw, s.total)
			return p.PgTypeCode
		}
	}
	// total > 0 时不可达
	return s.providers[len(s.providers)-1].PgTypeCode
}
