package index

// Trie is a byte-keyed prefix tree over index tokens, powering autocomplete.
// It is populated during the build phase and read-only afterwards.
type Trie struct {
	root *trieNode
}

type trieNode struct {
	children map[byte]*trieNode
	// order records first-seen child bytes so traversal is deterministic
	// for a fixed insertion sequence.
	order []byte
	end   bool
	word  string
}

// NewTrie creates an empty Trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

// Insert adds a word, creating one node per character and marking the final
// node as end-of-word with the complete word stored.
func (t *Trie) Insert(word string) {
	node := t.root
	for i := 0; i < len(word); i++ {
		c := word[i]
		child, ok := node.children[c]
		if !ok {
			child = newTrieNode()
			node.children[c] = child
			node.order = append(node.order, c)
		}
		node = child
	}
	node.end = true
	node.word = word
}

// Complete walks the prefix path and depth-first collects up to limit
// complete words reachable from it. A prefix with no path yields nil.
func (t *Trie) Complete(prefix string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	node := t.root
	for i := 0; i < len(prefix); i++ {
		child, ok := node.children[prefix[i]]
		if !ok {
			return nil
		}
		node = child
	}
	var results []string
	collect(node, limit, &results)
	return results
}

func collect(node *trieNode, limit int, results *[]string) {
	if len(*results) >= limit {
		return
	}
	if node.end {
		*results = append(*results, node.word)
		if len(*results) >= limit {
			return
		}
	}
	for _, c := range node.order {
		collect(node.children[c], limit, results)
		if len(*results) >= limit {
			return
		}
	}
}
