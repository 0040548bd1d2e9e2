// 随机数引擎，包装了golang.org/x/exp/rand，为仿真车辆提供里程计噪声
package randengine

import (
	"flag"

	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成，每辆车独占一个，不做并发保护
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Gaussian 均值为0、标准差为sigma的正态分布随机数
func (e *Engine) Gaussian(sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	return e.NormFloat64() * sigma
}

// Jitter 对平面坐标的两个分量分别叠加独立的正态噪声
func (e *Engine) Jitter(p entity.Point, sigma float64) entity.Point {
	return entity.Point{X: p.X + e.Gaussian(sigma), Y: p.Y + e.Gaussian(sigma), Z: p.Z}
}

