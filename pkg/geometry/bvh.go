package geometry

import (
	"math"

	"github.com/kellandavis/lumenmlt/pkg/core"
)

// NumSplits is the number of equally-spaced candidate planes tried per
// axis during SAH construction.
const NumSplits = 5

// MaxLeafTriangles is the triangle count above which a node is always
// considered for splitting.
const MaxLeafTriangles = 4

// Node is a 4-ary BVH node. NumTriangles == 0 means internal: Idx is the
// index of the first of four contiguous children. NumTriangles > 0 means
// leaf: Idx is the first triangle index, NumTriangles the count.
type Node struct {
	ChildBounds  core.AABB4
	Idx          int32
	NumTriangles int32
}

// BVH is a 4-ary SAH tree over a primitive's triangle slice. Triangles
// are physically reordered by construction; Nodes[0] is the root.
type BVH struct {
	Triangles  []Triangle
	Nodes      []Node
	RootBounds core.AABB
}

// Build constructs a 4-ary SAH BVH over triangles. The input slice is
// reordered in place and retained by the resulting BVH.
func Build(triangles []Triangle) *BVH {
	centers := make([]core.Vec3, len(triangles))
	bounds := core.EmptyAABB()
	for i, t := range triangles {
		centers[i] = t.Center()
		bounds = bounds.Union(t.Bounds())
	}

	b := &bvhBuilder{triangles: triangles, centers: centers, nodes: make([]Node, 1)}
	b.build(0, 0, len(triangles), bounds)

	return &BVH{Triangles: b.triangles, Nodes: b.nodes, RootBounds: bounds}
}

type bvhBuilder struct {
	triangles []Triangle
	centers   []core.Vec3
	nodes     []Node
}

// split describes a candidate (or accepted) 2-way partition.
type split struct {
	axis            int
	pos             float32
	leftBox, rightBox core.AABB
	nLeft, nRight   int
}

func (b *bvhBuilder) build(nodeIdx, start, count int, bounds core.AABB) {
	cost := float32(count) * bounds.HalfArea()

	if count <= MaxLeafTriangles {
		b.nodes[nodeIdx] = Node{Idx: int32(start), NumTriangles: int32(count)}
		return
	}

	best, ok := b.bestSplit(start, count, bounds, cost)
	if !ok {
		b.nodes[nodeIdx] = Node{Idx: int32(start), NumTriangles: int32(count)}
		return
	}

	mid := b.partition(start, count, best.axis, best.pos)
	leftStart, leftCount := start, mid-start
	rightStart, rightCount := mid, start+count-mid

	bestL, okL := b.bestSplit(leftStart, leftCount, best.leftBox, cost)
	bestR, okR := b.bestSplit(rightStart, rightCount, best.rightBox, cost)
	if !okL || !okR {
		b.nodes[nodeIdx] = Node{Idx: int32(start), NumTriangles: int32(count)}
		return
	}

	leafCost := float32(bestL.nLeft)*bestL.leftBox.HalfArea() +
		float32(bestL.nRight)*bestL.rightBox.HalfArea() +
		float32(bestR.nLeft)*bestR.leftBox.HalfArea() +
		float32(bestR.nRight)*bestR.rightBox.HalfArea()
	if !(leafCost < cost) {
		b.nodes[nodeIdx] = Node{Idx: int32(start), NumTriangles: int32(count)}
		return
	}

	midL := b.partition(leftStart, leftCount, bestL.axis, bestL.pos)
	midR := b.partition(rightStart, rightCount, bestR.axis, bestR.pos)

	firstChild := len(b.nodes)
	b.nodes = append(b.nodes, Node{}, Node{}, Node{}, Node{})
	b.nodes[nodeIdx] = Node{
		ChildBounds:  core.NewAABB4([4]core.AABB{bestL.leftBox, bestL.rightBox, bestR.leftBox, bestR.rightBox}),
		Idx:          int32(firstChild),
		NumTriangles: 0,
	}

	b.build(firstChild+0, leftStart, midL-leftStart, bestL.leftBox)
	b.build(firstChild+1, midL, leftStart+leftCount-midL, bestL.rightBox)
	b.build(firstChild+2, rightStart, midR-rightStart, bestR.leftBox)
	b.build(firstChild+3, midR, rightStart+rightCount-midR, bestR.rightBox)
}

// bestSplit searches NumSplits candidate planes per axis within
// [start, start+count) and returns the lowest-cost split strictly below
// currentCost, if any.
func (b *bvhBuilder) bestSplit(start, count int, bounds core.AABB, currentCost float32) (split, bool) {
	bestCost := currentCost
	var best split
	found := false

	size := bounds.Size()
	for axis := 0; axis < 3; axis++ {
		if size[axis] <= 0 {
			continue
		}
		for k := 0; k < NumSplits; k++ {
			pos := bounds.Min[axis] + float32(k+1)*size[axis]/float32(NumSplits+1)

			leftBox, rightBox := core.EmptyAABB(), core.EmptyAABB()
			nLeft, nRight := 0, 0
			for i := start; i < start+count; i++ {
				if b.centers[i][axis] < pos {
					leftBox = leftBox.Union(b.triangles[i].Bounds())
					nLeft++
				} else {
					rightBox = rightBox.Union(b.triangles[i].Bounds())
					nRight++
				}
			}
			if nLeft == 0 || nRight == 0 {
				continue
			}

			cost := float32(nLeft)*leftBox.HalfArea() + float32(nRight)*rightBox.HalfArea()
			if cost < bestCost {
				bestCost = cost
				found = true
				best = split{axis: axis, pos: pos, leftBox: leftBox, rightBox: rightBox, nLeft: nLeft, nRight: nRight}
			}
		}
	}
	return best, found
}

// partition reorders triangles/centers in [start, start+count) so that
// every element with center[axis] < pos comes first, and returns the
// split index.
func (b *bvhBuilder) partition(start, count int, axis int, pos float32) int {
	i, j := start, start+count-1
	for i <= j {
		if b.centers[i][axis] < pos {
			i++
		} else {
			b.triangles[i], b.triangles[j] = b.triangles[j], b.triangles[i]
			b.centers[i], b.centers[j] = b.centers[j], b.centers[i]
			j--
		}
	}
	return i
}

type stackEntry struct {
	node int32
	dist float32
}

// Intersect finds the nearest triangle hit within [tMin, tMax], or false
// if none exists.
func (bvh *BVH) Intersect(r core.Ray, tMin, tMax float32) (Hit, bool) {
	tRoot, rootHit := bvh.RootBounds.Intersect(r, tMin, tMax)
	if !rootHit {
		return Hit{}, false
	}

	stack := []stackEntry{{0, tRoot}}
	var closest Hit
	found := false
	closestDist := tMax

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if found && closestDist <= e.dist {
			continue
		}

		node := &bvh.Nodes[e.node]
		if node.NumTriangles > 0 {
			for k := 0; k < int(node.NumTriangles); k++ {
				idx := int(node.Idx) + k
				if h, ok := Intersect(bvh.Triangles[idx], idx, r, tMin, closestDist); ok {
					closest = h
					found = true
					closestDist = h.T
				}
			}
			continue
		}

		isHit, dists := node.ChildBounds.Intersect(r, tMin, closestDist)

		var order [4]int
		n := 0
		var used [4]bool
		for {
			bestLane := -1
			bestDist := float32(math.MaxFloat32)
			for lane := 0; lane < 4; lane++ {
				if isHit[lane] && !used[lane] && dists[lane] < bestDist {
					bestDist = dists[lane]
					bestLane = lane
				}
			}
			if bestLane == -1 {
				break
			}
			used[bestLane] = true
			order[n] = bestLane
			n++
		}
		// order[0] is nearest; push farthest-first so the nearest ends up
		// on top of the stack and is popped (processed) first.
		for i := n - 1; i >= 0; i-- {
			lane := order[i]
			stack = append(stack, stackEntry{node.Idx + int32(lane), dists[lane]})
		}
	}

	return closest, found
}
