package tree

import "fmt"

// Structural operations: insert, lookup, delete over the node store,
// implementing a standard red/black binary search tree keyed by UID
// with node-0 as sentinel. The rbtree.c half of the original source
// wasn't available — only its file format and lifecycle halves were —
// so this file is built from the node layout's implied contract
// (duplicate UIDs are a programmer error, deleted slots are reclaimed
// by swapping in the tail) and CLRS-style red/black maintenance,
// restructured as array-index operations — see DESIGN.md for the
// other_examples reference that informed the array-addressed shape.
//
// Invariants maintained after every mutation: root is black, sentinel
// is black, no two consecutive reds, equal black-height on every
// root-to-sentinel path.

// insertLocked inserts (uid, recordPosition); the caller holds t.mu and
// has already asserted the exclusive lock and refreshed the mapping.
func (t *Tree) insertLocked(uid, recordPosition uint32) error {
	ns, err := t.nodes()
	if err != nil {
		return err
	}
	hdr, err := t.header()
	if err != nil {
		return err
	}

	parent := uint32(sentinelIndex)
	goLeft := false
	cur := hdr.rootIndex()
	for cur != sentinelIndex {
		n := ns.node(cur)
		parent = cur
		switch {
		case uid == n.uid():
			panic(fmt.Sprintf("%s: uid %d", ErrDuplicateUID, uid))
		case uid < n.uid():
			cur = n.left()
			goLeft = true
		default:
			cur = n.right()
			goLeft = false
		}
	}

	if ns.count >= ns.capacity() {
		if err := t.grow(); err != nil {
			return err
		}
		if ns, err = t.nodes(); err != nil {
			return err
		}
		if hdr, err = t.header(); err != nil {
			return err
		}
	}

	newIndex := ns.count
	nn := ns.allocNode(newIndex)
	nn.reset()
	nn.setUID(uid)
	nn.setPos(recordPosition)
	nn.setLeft(sentinelIndex)
	nn.setRight(sentinelIndex)
	nn.setParent(parent)
	nn.setColor(red)

	if parent == sentinelIndex {
		hdr.setRootIndex(newIndex)
	} else if goLeft {
		ns.node(parent).setLeft(newIndex)
	} else {
		ns.node(parent).setRight(newIndex)
	}

	ns.count++
	newUsed := hdr.usedFileSize() + nodeSize
	hdr.setUsedFileSize(newUsed)

	rbInsertFixup(ns, hdr, newIndex)

	hdr.updateChecksum()
	t.markDirty(int64(newUsed))
	t.mmapUsedLength = int64(newUsed)

	return nil
}

// lookupLocked returns the record position for uid, read-only.
func (t *Tree) lookupLocked(uid uint32) (uint32, error) {
	ns, err := t.nodes()
	if err != nil {
		return 0, err
	}
	hdr, err := t.header()
	if err != nil {
		return 0, err
	}

	cur := hdr.rootIndex()
	for cur != sentinelIndex {
		n := ns.node(cur)
		switch {
		case uid == n.uid():
			return n.pos(), nil
		case uid < n.uid():
			cur = n.left()
		default:
			cur = n.right()
		}
	}
	return 0, ErrNotFound
}

// deleteLocked removes uid, rebalances, and reclaims its node-store
// slot by swapping in the tail node and shrinking used_file_size,
// avoiding the bookkeeping a separate free list would need.
func (t *Tree) deleteLocked(uid uint32) error {
	ns, err := t.nodes()
	if err != nil {
		return err
	}
	hdr, err := t.header()
	if err != nil {
		return err
	}

	z := hdr.rootIndex()
	for z != sentinelIndex {
		n := ns.node(z)
		if uid == n.uid() {
			break
		}
		if uid < n.uid() {
			z = n.left()
		} else {
			z = n.right()
		}
	}
	if z == sentinelIndex {
		return ErrNotFound
	}

	y := z
	yOriginalColor := ns.node(y).color()
	var x, xParent uint32

	switch {
	case ns.node(z).left() == sentinelIndex:
		x = ns.node(z).right()
		xParent = ns.node(z).parent()
		rbTransplant(ns, hdr, z, x)
	case ns.node(z).right() == sentinelIndex:
		x = ns.node(z).left()
		xParent = ns.node(z).parent()
		rbTransplant(ns, hdr, z, x)
	default:
		y = treeMinimum(ns, ns.node(z).right())
		yOriginalColor = ns.node(y).color()
		x = ns.node(y).right()
		if ns.node(y).parent() == z {
			xParent = y
		} else {
			xParent = ns.node(y).parent()
			rbTransplant(ns, hdr, y, x)
			ns.node(y).setRight(ns.node(z).right())
			ns.node(ns.node(y).right()).setParent(y)
		}
		rbTransplant(ns, hdr, z, y)
		ns.node(y).setLeft(ns.node(z).left())
		ns.node(ns.node(y).left()).setParent(y)
		ns.node(y).setColor(ns.node(z).color())
	}

	if yOriginalColor == black {
		rbDeleteFixup(ns, hdr, x, xParent)
	}

	// z's node-store slot is now unreferenced by the tree structure
	// regardless of which branch ran above; reclaim it by swapping in
	// the last logical slot.
	freed := z
	last := ns.count - 1
	if freed != last {
		moveNode(ns, hdr, last, freed)
	}
	ns.count--

	newUsed := hdr.usedFileSize() - nodeSize
	hdr.setUsedFileSize(newUsed)
	hdr.updateChecksum()
	t.markDirty(int64(newUsed))
	t.mmapUsedLength = int64(newUsed)

	return t.truncate()
}

// inOrderLocked returns every (uid, position) pair in ascending UID
// order. Recursion depth is bounded by the tree's height, at most twice
// its black-height, which is O(log n) by construction.
func (t *Tree) inOrderLocked() ([]UIDPosition, error) {
	ns, err := t.nodes()
	if err != nil {
		return nil, err
	}
	hdr, err := t.header()
	if err != nil {
		return nil, err
	}

	out := make([]UIDPosition, 0, ns.count)
	var walk func(idx uint32)
	walk = func(idx uint32) {
		if idx == sentinelIndex {
			return
		}
		n := ns.node(idx)
		walk(n.left())
		out = append(out, UIDPosition{UID: n.uid(), Position: n.pos()})
		walk(n.right())
	}
	walk(hdr.rootIndex())
	return out, nil
}

func treeMinimum(ns nodeStore, x uint32) uint32 {
	for ns.node(x).left() != sentinelIndex {
		x = ns.node(x).left()
	}
	return x
}

// rbTransplant replaces the subtree rooted at u with the subtree
// rooted at v, the CLRS TRANSPLANT helper re-expressed over node
// indices with the sentinel doubling as "u had no parent" (u is root).
func rbTransplant(ns nodeStore, hdr headerView, u, v uint32) {
	uParent := ns.node(u).parent()
	if uParent == sentinelIndex {
		hdr.setRootIndex(v)
	} else if ns.node(uParent).left() == u {
		ns.node(uParent).setLeft(v)
	} else {
		ns.node(uParent).setRight(v)
	}
	ns.node(v).setParent(uParent)
}

func rbRotateLeft(ns nodeStore, hdr headerView, x uint32) {
	xNode := ns.node(x)
	y := xNode.right()
	yNode := ns.node(y)

	xNode.setRight(yNode.left())
	if yNode.left() != sentinelIndex {
		ns.node(yNode.left()).setParent(x)
	}

	xParent := xNode.parent()
	yNode.setParent(xParent)
	if xParent == sentinelIndex {
		hdr.setRootIndex(y)
	} else {
		xp := ns.node(xParent)
		if xp.left() == x {
			xp.setLeft(y)
		} else {
			xp.setRight(y)
		}
	}

	yNode.setLeft(x)
	xNode.setParent(y)
}

func rbRotateRight(ns nodeStore, hdr headerView, x uint32) {
	xNode := ns.node(x)
	y := xNode.left()
	yNode := ns.node(y)

	xNode.setLeft(yNode.right())
	if yNode.right() != sentinelIndex {
		ns.node(yNode.right()).setParent(x)
	}

	xParent := xNode.parent()
	yNode.setParent(xParent)
	if xParent == sentinelIndex {
		hdr.setRootIndex(y)
	} else {
		xp := ns.node(xParent)
		if xp.right() == x {
			xp.setRight(y)
		} else {
			xp.setLeft(y)
		}
	}

	yNode.setRight(x)
	xNode.setParent(y)
}

func rbInsertFixup(ns nodeStore, hdr headerView, z uint32) {
	for ns.node(ns.node(z).parent()).color() == red {
		parent := ns.node(z).parent()
		grand := ns.node(parent).parent()

		if parent == ns.node(grand).left() {
			uncle := ns.node(grand).right()
			if ns.node(uncle).color() == red {
				ns.node(parent).setColor(black)
				ns.node(uncle).setColor(black)
				ns.node(grand).setColor(red)
				z = grand
				continue
			}
			if z == ns.node(parent).right() {
				z = parent
				rbRotateLeft(ns, hdr, z)
				parent = ns.node(z).parent()
				grand = ns.node(parent).parent()
			}
			ns.node(parent).setColor(black)
			ns.node(grand).setColor(red)
			rbRotateRight(ns, hdr, grand)
		} else {
			uncle := ns.node(grand).left()
			if ns.node(uncle).color() == red {
				ns.node(parent).setColor(black)
				ns.node(uncle).setColor(black)
				ns.node(grand).setColor(red)
				z = grand
				continue
			}
			if z == ns.node(parent).left() {
				z = parent
				rbRotateRight(ns, hdr, z)
				parent = ns.node(z).parent()
				grand = ns.node(parent).parent()
			}
			ns.node(parent).setColor(black)
			ns.node(grand).setColor(red)
			rbRotateLeft(ns, hdr, grand)
		}
	}
	ns.node(hdr.rootIndex()).setColor(black)
}

func rbDeleteFixup(ns nodeStore, hdr headerView, x, xParent uint32) {
	for x != hdr.rootIndex() && ns.node(x).color() == black {
		if x == ns.node(xParent).left() {
			w := ns.node(xParent).right()
			if ns.node(w).color() == red {
				ns.node(w).setColor(black)
				ns.node(xParent).setColor(red)
				rbRotateLeft(ns, hdr, xParent)
				w = ns.node(xParent).right()
			}
			if ns.node(ns.node(w).left()).color() == black &&
				ns.node(ns.node(w).right()).color() == black {
				ns.node(w).setColor(red)
				x = xParent
				xParent = ns.node(x).parent()
				continue
			}
			if ns.node(ns.node(w).right()).color() == black {
				ns.node(ns.node(w).left()).setColor(black)
				ns.node(w).setColor(red)
				rbRotateRight(ns, hdr, w)
				w = ns.node(xParent).right()
			}
			ns.node(w).setColor(ns.node(xParent).color())
			ns.node(xParent).setColor(black)
			ns.node(ns.node(w).right()).setColor(black)
			rbRotateLeft(ns, hdr, xParent)
			x = hdr.rootIndex()
		} else {
			w := ns.node(xParent).left()
			if ns.node(w).color() == red {
				ns.node(w).setColor(black)
				ns.node(xParent).setColor(red)
				rbRotateRight(ns, hdr, xParent)
				w = ns.node(xParent).left()
			}
			if ns.node(ns.node(w).right()).color() == black &&
				ns.node(ns.node(w).left()).color() == black {
				ns.node(w).setColor(red)
				x = xParent
				xParent = ns.node(x).parent()
				continue
			}
			if ns.node(ns.node(w).left()).color() == black {
				ns.node(ns.node(w).right()).setColor(black)
				ns.node(w).setColor(red)
				rbRotateLeft(ns, hdr, w)
				w = ns.node(xParent).left()
			}
			ns.node(w).setColor(ns.node(xParent).color())
			ns.node(xParent).setColor(black)
			ns.node(ns.node(w).left()).setColor(black)
			rbRotateRight(ns, hdr, xParent)
			x = hdr.rootIndex()
		}
	}
	ns.node(x).setColor(black)
}

// moveNode relocates the node at from into the to slot, patching every
// reference that pointed at from (its parent's child pointer, or the
// header's root index; its children's parent pointers).
func moveNode(ns nodeStore, hdr headerView, from, to uint32) {
	src := ns.node(from)
	uid := src.uid()
	pos := src.pos()
	left := src.left()
	right := src.right()
	parent := src.parent()
	col := src.color()

	dst := ns.node(to)
	dst.setUID(uid)
	dst.setPos(pos)
	dst.setLeft(left)
	dst.setRight(right)
	dst.setParent(parent)
	dst.setColor(col)

	if parent == sentinelIndex {
		hdr.setRootIndex(to)
	} else {
		p := ns.node(parent)
		if p.left() == from {
			p.setLeft(to)
		} else {
			p.setRight(to)
		}
	}
	if left != sentinelIndex {
		ns.node(left).setParent(to)
	}
	if right != sentinelIndex {
		ns.node(right).setParent(to)
	}
}
