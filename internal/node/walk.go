package node

// WalkPreOrder visits every descendant of root in document (pre-order)
// order, skipping any node flagged IgnoreCDATA together with its entire
// subtree, per spec.md §4.5 steps 3, 9 and 10. depth starts at 1 for
// root's direct children, matching the "depth of the last emitted node"
// bookkeeping those steps describe.
func WalkPreOrder(root *Node, visit func(n *Node, depth int)) {
	walkPreOrder(root, 1, visit)
}

func walkPreOrder(n *Node, depth int, visit func(n *Node, depth int)) {
	for _, c := range n.Children {
		if c.HasFlag(IgnoreCDATA) {
			continue
		}
		visit(c, depth)
		walkPreOrder(c, depth+1, visit)
	}
}

// WalkLevelOrder visits every descendant of root breadth-first, with the
// same IgnoreCDATA subtree-skipping rule as WalkPreOrder. The string
// interning passes (spec.md §4.5 steps 4-7) run in this order.
func WalkLevelOrder(root *Node, visit func(n *Node)) {
	queue := enqueueChildren(nil, root)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visit(n)
		queue = enqueueChildren(queue, n)
	}
}

func enqueueChildren(queue []*Node, n *Node) []*Node {
	for _, c := range n.Children {
		if !c.HasFlag(IgnoreCDATA) {
			queue = append(queue, c)
		}
	}
	return queue
}
