package queryengine

import (
	"fmt"

	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// Direction selects which side of a calls edge CallGraph traverses.
type Direction string

const (
	DirectionCallers Direction = "callers"
	DirectionCallees Direction = "callees"
	DirectionBoth    Direction = "both"
)

// DefaultCallGraphNodeLimit is the default cap on nodes a call graph traversal will visit.
const DefaultCallGraphNodeLimit = 100

// CallGraphNode is one chunk reached by the traversal, at the
// shallowest depth it was found (0 = seed).
type CallGraphNode struct {
	Chunk *model.Chunk
	Depth int
}

// CallGraphEdge is one calls edge between two included nodes, carrying
// the metadata callers need to render an edge verbatim.
type CallGraphEdge struct {
	SourceChunkID string
	TargetChunkID string
	CalleeName    string
	Line          int
	Receiver      string
}

// CallGraphResult is the node/edge set CallGraph returns.
type CallGraphResult struct {
	Nodes []CallGraphNode
	Edges []CallGraphEdge
}

// CallGraph BFS-traverses outward from every chunk defining function,
// in the requested direction(s), bounded by depth and nodeLimit.
func (e *Engine) CallGraph(repoID, branch, function string, direction Direction, depth, nodeLimit int) (*CallGraphResult, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}
	if nodeLimit <= 0 {
		nodeLimit = DefaultCallGraphNodeLimit
	}

	reader := storage.NewChunkReaderWithDB(e.db)
	seeds, err := reader.ReadChunksBySymbol(function, repoID, branch)
	if err != nil {
		return nil, fmt.Errorf("read chunks by symbol: %w", err)
	}
	if len(seeds) == 0 {
		return &CallGraphResult{}, nil
	}

	relStore := storage.NewRelationshipStore(e.db)

	nodes := map[string]*CallGraphNode{}
	var nodeOrder []string
	edgeSeen := map[string]bool{}
	var edges []CallGraphEdge

	addNode := func(c *model.Chunk, d int) bool {
		if n, ok := nodes[c.ID]; ok {
			if d < n.Depth {
				n.Depth = d
			}
			return true
		}
		if len(nodes) >= nodeLimit {
			return false
		}
		nodes[c.ID] = &CallGraphNode{Chunk: c, Depth: d}
		nodeOrder = append(nodeOrder, c.ID)
		return true
	}

	frontier := make([]string, 0, len(seeds))
	for _, s := range seeds {
		addNode(s, 0)
		frontier = append(frontier, s.ID)
	}

	recordEdge := func(source, target string, meta map[string]any) {
		key := source + "\x00" + target
		if edgeSeen[key] {
			return
		}
		edgeSeen[key] = true
		calleeName, _ := meta["callee_name"].(string)
		line := metaLine(meta)
		receiver, _ := meta["receiver"].(string)
		edges = append(edges, CallGraphEdge{
			SourceChunkID: source,
			TargetChunkID: target,
			CalleeName:    calleeName,
			Line:          line,
			Receiver:      receiver,
		})
	}

	wantCallees := direction == DirectionCallees || direction == DirectionBoth
	wantCallers := direction == DirectionCallers || direction == DirectionBoth

	for level := 1; level <= depth && len(frontier) > 0 && len(nodes) < nodeLimit; level++ {
		nextSeen := map[string]bool{}
		var nextFrontier []string

		if wantCallees {
			rels, err := relStore.OutgoingFrom(frontier, model.RelationshipCalls)
			if err != nil {
				return nil, fmt.Errorf("outgoing calls: %w", err)
			}
			targets, err := reader.ReadChunksByIDs(dedupeRelTargets(rels))
			if err != nil {
				return nil, fmt.Errorf("load callee chunks: %w", err)
			}
			byID := chunksByID(targets)
			for _, r := range rels {
				target, ok := byID[r.TargetChunkID]
				if !ok || !addNode(target, level) {
					continue
				}
				recordEdge(r.SourceChunkID, r.TargetChunkID, r.Metadata)
				if !nextSeen[target.ID] {
					nextSeen[target.ID] = true
					nextFrontier = append(nextFrontier, target.ID)
				}
			}
		}

		if wantCallers {
			rels, err := relStore.IncomingTo(frontier, model.RelationshipCalls)
			if err != nil {
				return nil, fmt.Errorf("incoming calls: %w", err)
			}
			sources, err := reader.ReadChunksByIDs(dedupeRelSources(rels))
			if err != nil {
				return nil, fmt.Errorf("load caller chunks: %w", err)
			}
			byID := chunksByID(sources)
			for _, r := range rels {
				source, ok := byID[r.SourceChunkID]
				if !ok || !addNode(source, level) {
					continue
				}
				recordEdge(r.SourceChunkID, r.TargetChunkID, r.Metadata)
				if !nextSeen[source.ID] {
					nextSeen[source.ID] = true
					nextFrontier = append(nextFrontier, source.ID)
				}
			}
		}

		frontier = nextFrontier
	}

	result := &CallGraphResult{Edges: edges}
	for _, id := range nodeOrder {
		result.Nodes = append(result.Nodes, *nodes[id])
	}
	return result, nil
}

// metaLine reads the "line" metadata value, which arrives as an int
// when Metadata came straight from callgraph.Build but as a float64
// once it has round-tripped through the relationships table's JSON
// column (encoding/json decodes all numbers into float64).
func metaLine(meta map[string]any) int {
	switch v := meta["line"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func dedupeRelTargets(rels []*model.Relationship) []string {
	ids := make([]string, len(rels))
	for i, r := range rels {
		ids[i] = r.TargetChunkID
	}
	return dedupeStrings(ids)
}

func dedupeRelSources(rels []*model.Relationship) []string {
	ids := make([]string, len(rels))
	for i, r := range rels {
		ids[i] = r.SourceChunkID
	}
	return dedupeStrings(ids)
}
