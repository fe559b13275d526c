package kv

import (
	"github.com/DataDog/zstd"
	"github.com/lintang-b-s/isomatch/pkg/concurrent"
)

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}

type compressResult struct {
	key   []byte
	value []byte
	err   error
}

func compressJob(job concurrent.CompressJobItem) compressResult {
	value, err := compress(job.Value)
	return compressResult{key: job.Key, value: value, err: err}
}
