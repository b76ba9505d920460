package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Character(uri);",
	"CREATE INDEX ON :Character(label);",
	"CREATE INDEX ON :Entity(name);",
}

const (
	SaveCharacterQuery = `
		MERGE (c:Character {uri: $uri})
		SET c.label = $label,
			c.name = $name,
			c.species = $species,
			c.description = $description,
			c.homeworld = $homeworld,
			c.birth_year = $birth_year,
			c.affiliations = $affiliations,
			c.semantics = $semantics
		RETURN c.uri AS uri
	`

	ClearRelationshipsQuery = `
		MATCH (c:Character {uri: $uri})-[r:RELATES_TO]->()
		DELETE r
	`

	SaveRelationshipsQuery = `
		MATCH (c:Character {uri: $uri})
		UNWIND $relationships AS rel
		MERGE (t:Entity {name: rel.target})
		CREATE (c)-[:RELATES_TO {type: rel.type, details: rel.details}]->(t)
	`

	GetAllCharactersQuery = `
		MATCH (c:Character)
		OPTIONAL MATCH (c)-[r:RELATES_TO]->(t:Entity)
		RETURN c.uri AS uri,
			c.label AS label,
			c.name AS name,
			c.species AS species,
			c.description AS description,
			c.homeworld AS homeworld,
			c.birth_year AS birth_year,
			c.affiliations AS affiliations,
			c.semantics AS semantics,
			collect({target: t.name, type: r.type, details: r.details}) AS relationships
		ORDER BY uri
	`

	CountCharactersQuery = `
		MATCH (c:Character)
		RETURN count(c) AS count
	`
)
