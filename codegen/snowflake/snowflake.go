// Package snowflake 雪花算法 ID 生成器，CLI 写入演示数据时用作主键。
//
// 雪花 ID 按生成时间单调递增，因此按 id 升序即近似按写入时间排序，
// 分页的主键兜底排序依赖这一性质保持稳定。
package snowflake

import (
	"fmt"
	"sync"
	"time"

	"pagekit/errors"
)

const (
	// 起始时间戳 (2023-01-01 00:00:00 UTC)
	epoch int64 = 1672531200000

	workerIDBits     = 5
	datacenterIDBits = 5
	sequenceBits     = 12

	maxWorkerID     = -1 ^ (-1 << workerIDBits)     // 31
	maxDatacenterID = -1 ^ (-1 << datacenterIDBits) // 31
	maxSequence     = -1 ^ (-1 << sequenceBits)     // 4095

	workerIDShift      = sequenceBits
	datacenterIDShift  = sequenceBits + workerIDBits
	timestampLeftShift = sequenceBits + workerIDBits + datacenterIDBits
)

// Config 生成器配置，取值范围均为 0..31
type Config struct {
	DatacenterID int64 `mapstructure:"datacenter_id"`
	WorkerID     int64 `mapstructure:"worker_id"`
}

// Generator Snowflake ID生成器
type Generator struct {
	mux           sync.Mutex
	datacenterID  int64
	workerID      int64
	sequence      int64
	lastTimestamp int64
	now           func() int64 // 毫秒
}

// NewGenerator 创建ID生成器
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.DatacenterID < 0 || cfg.DatacenterID > maxDatacenterID {
		return nil, errors.NewError(errors.ErrCodeConfiguration,
			fmt.Sprintf("datacenter id %d out of range [0, %d]", cfg.DatacenterID, maxDatacenterID))
	}
	if cfg.WorkerID < 0 || cfg.WorkerID > maxWorkerID {
		return nil, errors.NewError(errors.ErrCodeConfiguration,
			fmt.Sprintf("worker id %d out of range [0, %d]", cfg.WorkerID, maxWorkerID))
	}
	return &Generator{
		datacenterID:  cfg.DatacenterID,
		workerID:      cfg.WorkerID,
		lastTimestamp: -1,
		now:           func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// NextID 生成下一个ID；时钟回拨时返回错误而不是生成可能重复的 ID。
func (g *Generator) NextID() (int64, error) {
	g.mux.Lock()
	defer g.mux.Unlock()

	now := g.now()
	if now < g.lastTimestamp {
		return 0, errors.NewError(errors.ErrCodeInternal,
			fmt.Sprintf("clock moved backwards by %dms", g.lastTimestamp-now))
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// 序列号用完，等待下一毫秒
			for now <= g.lastTimestamp {
				now = g.now()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = now

	return ((now - epoch) << timestampLeftShift) |
		(g.datacenterID << datacenterIDShift) |
		(g.workerID << workerIDShift) |
		g.sequence, nil
}

// NextIDs 连续生成 n 个递增的 ID
func (g *Generator) NextIDs(n int) ([]int64, error) {
	ids := make([]int64, 0, max(n, 0))
	for range n {
		id, err := g.NextID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Parts ID 的各组成部分
type Parts struct {
	Time         time.Time
	DatacenterID int64
	WorkerID     int64
	Sequence     int64
}

// Parse 解析ID
func Parse(id int64) Parts {
	return Parts{
		Time:         time.UnixMilli((id >> timestampLeftShift) + epoch).UTC(),
		DatacenterID: (id >> datacenterIDShift) & maxDatacenterID,
		WorkerID:     (id >> workerIDShift) & maxWorkerID,
		Sequence:     id & maxSequence,
	}
}
