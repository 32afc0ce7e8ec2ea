package maintenance

// Node - узел иерархии активов.
type Node struct {
	ID       uint64
	ParentID *uint64
}

// Forest раскладывает узлы по родителям с сохранением порядка входа.
// Узел, чей родитель отсутствует или равен ему самому, становится корнем.
// Узлы, недостижимые из корней (замкнутые в цикл), поднимаются в корни в порядке входа,
// так что каждый узел попадает в лес ровно один раз.
func Forest(nodes []Node) (roots []uint64, children map[uint64][]uint64) {
	known := make(map[uint64]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	children = make(map[uint64][]uint64)
	for _, n := range nodes {
		if n.ParentID == nil || *n.ParentID == n.ID || !known[*n.ParentID] {
			roots = append(roots, n.ID)
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n.ID)
	}

	visited := make(map[uint64]bool, len(nodes))
	var walk func(id uint64)
	walk = func(id uint64) {
		visited[id] = true
		for _, c := range children[id] {
			if !visited[c] {
				walk(c)
			}
		}
	}
	for _, r := range roots {
		walk(r)
	}

	for _, n := range nodes {
		if visited[n.ID] {
			continue
		}
		// n лежит в цикле: отрываем его от родителя.
		parent := *n.ParentID
		siblings := children[parent]
		for i, c := range siblings {
			if c == n.ID {
				children[parent] = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
		roots = append(roots, n.ID)
		walk(n.ID)
	}
	return roots, children
}

// CreatesCycle сообщает, появится ли цикл, если узлу id назначить родителя newParent.
func CreatesCycle(parents map[uint64]*uint64, id, newParent uint64) bool {
	seen := make(map[uint64]bool)
	for cur := newParent; ; {
		if cur == id {
			return true
		}
		if seen[cur] {
			// цикл выше по дереву, id в него не входит
			return false
		}
		seen[cur] = true
		p, ok := parents[cur]
		if !ok || p == nil {
			return false
		}
		cur = *p
	}
}
