package rpc

import "context"

// SelectBest picks the best RPC URL from the provided list using the named
// algorithm. algorithm must be one of "fastest", "round-robin" or
// "failover"; empty defaults to "fastest".
//
// Returns ErrNoHealthyRPC when the list is empty or all endpoints fail.
func SelectBest(ctx context.Context, urls []string, algorithm string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	algo, err := ParseAlgorithm(algorithm)
	if err != nil {
		return "", err
	}
	return Best(ctx, urls, algo)
}
