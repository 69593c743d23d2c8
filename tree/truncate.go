package tree

// truncate shrinks the file when free space exceeds the configured
// threshold — _mail_tree_truncate, "pretty much copy&pasted from
// mail_index_compress()" per the original's own comment. It requires
// the owning index to be exclusively locked and does not remap itself:
// the sync_id bump makes the next ensureCurrent call see a stale cached
// sync_id and remap.
func (t *Tree) truncate() error {
	t.assertExclusive("truncate")

	if t.anonMmap || t.mmapFullLength <= t.cfg.minSize() {
		return nil
	}

	emptySpace := t.mmapFullLength - t.mmapUsedLength
	threshold := t.mmapFullLength / 100 * int64(t.cfg.TruncatePercentage)
	if emptySpace <= threshold {
		return nil
	}

	target := t.mmapUsedLength + emptySpace*int64(t.cfg.TruncateKeepPercentage)/100

	// keep the size record-aligned
	target -= (target - headerSize) % nodeSize

	if target < t.cfg.minSize() {
		target = t.cfg.minSize()
	}

	if err := t.truncateFile(target); err != nil {
		return t.setSyscallError("ftruncate()", err)
	}

	hdr, err := t.header()
	if err != nil {
		return err
	}
	hdr.bumpSyncID()
	hdr.updateChecksum()
	t.markDirty(headerSize)
	t.mmapFullLength = target

	return nil
}
