package query

import (
	"strings"
)

// Predicate is one typed filter condition: a SQL expression with every value
// bound as a parameter. The three ranking branches and the resolver compose
// their filters from these instead of interpolating raw strings.
type Predicate struct {
	Expr string
	Args []interface{}
}

// PredicateList is an AND-composed set of predicates.
type PredicateList []Predicate

// Clause renders the list as a WHERE fragment joined to any conditions the
// caller already has. Empty lists render as the neutral condition.
func (pl PredicateList) Clause() (string, []interface{}) {
	if len(pl) == 0 {
		return "1=1", nil
	}
	exprs := make([]string, len(pl))
	var args []interface{}
	for i, p := range pl {
		exprs[i] = p.Expr
		args = append(args, p.Args...)
	}
	return strings.Join(exprs, " AND "), args
}

// GroupEquals filters a key column to one demographic population group.
func GroupEquals(col, group string) Predicate {
	return Predicate{Expr: "substr(" + col + ", 4, 4) = ?", Args: []interface{}{group}}
}

// LevelPrefix filters a key column to one summary level by key prefix.
// Used by the aggregate branches, which have only the key to go on.
func LevelPrefix(col, level string) Predicate {
	return Predicate{Expr: "substr(" + col + ", 1, 3) = ?", Args: []interface{}{level}}
}

// KeyContainsState filters a key column to keys whose FIPS chain carries the
// state code. A contains-match on the suffix, as the aggregate branches use.
func KeyContainsState(col, stateFips string) Predicate {
	return Predicate{Expr: col + " LIKE ?", Args: []interface{}{"%US" + stateFips + "%"}}
}

// LevelEquals filters on the observation's own summary-level column.
// The direct branch uses exact column equality, not a key-prefix match.
func LevelEquals(col, level string) Predicate {
	return Predicate{Expr: col + " = ?", Args: []interface{}{level}}
}

// StateEquals filters on the observation's own state FIPS column.
func StateEquals(col, stateFips string) Predicate {
	return Predicate{Expr: col + " = ?", Args: []interface{}{stateFips}}
}

// PercentileBetween filters a percentile column to an inclusive band.
func PercentileBetween(col string, min, max float64) Predicate {
	return Predicate{Expr: col + " BETWEEN ? AND ?", Args: []interface{}{min, max}}
}

// VariableIn filters to a set of metric variable ids.
func VariableIn(col string, ids []string) Predicate {
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return Predicate{Expr: col + " IN (" + placeholders + ")", Args: args}
}

// keyFilters builds the shared demographic/level/state predicate set the two
// aggregate branches apply to a key column.
func keyFilters(col, populationGroup, level, stateFips string) PredicateList {
	pl := PredicateList{GroupEquals(col, populationGroup)}
	if level != "" {
		pl = append(pl, LevelPrefix(col, level))
	}
	if stateFips != "" {
		pl = append(pl, KeyContainsState(col, stateFips))
	}
	return pl
}

// observationFilters builds the direct branch's predicate set, which matches
// the observation's own level/state columns exactly.
func observationFilters(populationGroup, level, stateFips string) PredicateList {
	pl := PredicateList{GroupEquals("geo_id", populationGroup)}
	if level != "" {
		pl = append(pl, LevelEquals("summary_level", level))
	}
	if stateFips != "" {
		pl = append(pl, StateEquals("state_fips", stateFips))
	}
	return pl
}

// orderDirection normalizes a sort order to a SQL keyword; anything but
// "asc" sorts descending.
func orderDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}
