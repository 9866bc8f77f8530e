// Package weight computes the total size of files matching glob patterns.
//
// It compiles the patterns once, walks each pattern's static root using
// fastwalk for parallel traversal, prunes directories no pattern can reach,
// sizes matched files on a bounded worker pool, and counts every physical
// file once no matter how many patterns or paths lead to it.
package weight
