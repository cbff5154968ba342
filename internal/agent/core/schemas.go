package core

// JSON Schemas for the structured outputs. Each stage embeds its schema
// in the system prompt and the inference client rejects completions
// that do not validate against it. Score fields carry the same bounds
// the Go types document.

var (
	MarketResearchSchema = Schema{Name: "market_research_output", Doc: marketResearchSchemaDoc}
	PainPointSchema      = Schema{Name: "pain_point_discovery_output", Doc: painPointSchemaDoc}
	UserPersonaSchema    = Schema{Name: "user_persona_analysis_output", Doc: userPersonaSchemaDoc}
	NicheSchema          = Schema{Name: "niche_opportunity_output", Doc: nicheSchemaDoc}
	BusinessModelSchema  = Schema{Name: "business_model_output", Doc: businessModelSchemaDoc}
	ValidationSchema     = Schema{Name: "validation_output", Doc: validationSchemaDoc}
)

const marketResearchSchemaDoc = `{
  "type": "object",
  "required": ["market_trends", "competitors", "market_saturation_level", "growth_opportunities", "research_sources", "confidence_score"],
  "properties": {
    "market_trends": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["trend_name", "description", "time_horizon", "relevance_score"],
        "properties": {
          "trend_name": {"type": "string"},
          "description": {"type": "string"},
          "growth_rate": {"type": "number"},
          "market_size": {"type": "string"},
          "projected_size": {"type": "string"},
          "key_drivers": {"type": "array", "items": {"type": "string"}},
          "time_horizon": {"type": "string"},
          "relevance_score": {"type": "number", "minimum": 0, "maximum": 10}
        }
      }
    },
    "competitors": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "description", "market_position"],
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "string"},
          "pricing": {"type": "string"},
          "market_position": {"type": "string"},
          "strengths": {"type": "array", "items": {"type": "string"}},
          "weaknesses": {"type": "array", "items": {"type": "string"}},
          "funding_stage": {"type": "string"},
          "url": {"type": "string"}
        }
      }
    },
    "market_saturation_level": {"type": "string"},
    "growth_opportunities": {"type": "array", "items": {"type": "string"}},
    "market_size_estimate": {"type": "string"},
    "seasonal_patterns": {"type": "string"},
    "geographic_insights": {"type": "string"},
    "research_sources": {"type": "array", "items": {"type": "string"}},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 10}
  }
}`

const painPointSchemaDoc = `{
  "type": "object",
  "required": ["pain_points", "top_pain_categories", "data_sources", "total_mentions_analyzed", "analysis_date_range", "confidence_score"],
  "properties": {
    "pain_points": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["problem_description", "frequency_score", "urgency_score", "impact_level", "affected_audience", "source_mentions", "automation_potential"],
        "properties": {
          "problem_description": {"type": "string"},
          "frequency_score": {"type": "integer", "minimum": 1, "maximum": 10},
          "urgency_score": {"type": "integer", "minimum": 1, "maximum": 10},
          "impact_level": {"type": "string"},
          "affected_audience": {"type": "string"},
          "current_solutions": {"type": "array", "items": {"type": "string"}},
          "source_mentions": {"type": "integer", "minimum": 0},
          "source_platforms": {"type": "array", "items": {"type": "string"}},
          "example_quotes": {"type": "array", "items": {"type": "string"}},
          "automation_potential": {"type": "number", "minimum": 0, "maximum": 10}
        }
      }
    },
    "top_pain_categories": {"type": "array", "items": {"type": "string"}},
    "sentiment_analysis": {"type": "string"},
    "data_sources": {"type": "array", "items": {"type": "string"}},
    "total_mentions_analyzed": {"type": "integer", "minimum": 0},
    "analysis_date_range": {"type": "string"},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 10}
  }
}`

const userPersonaSchemaDoc = `{
  "type": "object",
  "required": ["primary_personas", "confidence_score"],
  "properties": {
    "primary_personas": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["persona_name", "persona_description", "demographics", "behavior"],
        "properties": {
          "persona_name": {"type": "string"},
          "persona_description": {"type": "string"},
          "demographics": {
            "type": "object",
            "required": ["age_range", "income_range", "education_level", "location_type"],
            "properties": {
              "age_range": {"type": "string"},
              "gender_distribution": {"type": "string"},
              "income_range": {"type": "string"},
              "education_level": {"type": "string"},
              "job_titles": {"type": "array", "items": {"type": "string"}},
              "company_size": {"type": "string"},
              "location_type": {"type": "string"}
            }
          },
          "behavior": {
            "type": "object",
            "required": ["decision_making_process", "budget_authority", "technology_adoption"],
            "properties": {
              "preferred_communication_channels": {"type": "array", "items": {"type": "string"}},
              "decision_making_process": {"type": "string"},
              "budget_authority": {"type": "string"},
              "technology_adoption": {"type": "string"},
              "research_habits": {"type": "array", "items": {"type": "string"}},
              "objections_concerns": {"type": "array", "items": {"type": "string"}}
            }
          },
          "pain_points": {"type": "array", "items": {"type": "string"}},
          "goals_motivations": {"type": "array", "items": {"type": "string"}},
          "preferred_features": {"type": "array", "items": {"type": "string"}},
          "accessibility_needs": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "secondary_personas": {"type": "array"},
    "persona_prioritization": {"type": "object"},
    "cross_persona_insights": {"type": "array", "items": {"type": "string"}},
    "market_segmentation": {"type": ["object", "array"]},
    "research_methodology": {"type": "array", "items": {"type": "string"}},
    "sample_size": {"type": "integer", "minimum": 0},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 10}
  }
}`

const nicheSchemaDoc = `{
  "type": "object",
  "required": ["niches", "confidence_score"],
  "properties": {
    "niches": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["niche_name", "description", "target_persona", "demand_level", "trend_score", "competition_level"],
        "properties": {
          "niche_name": {"type": "string"},
          "description": {"type": "string"},
          "target_persona": {"type": "string"},
          "demand_level": {"type": "string"},
          "trend_score": {"type": "number", "minimum": 0, "maximum": 10},
          "competition_level": {"type": "string"},
          "pain_points_addressed": {"type": "array", "items": {"type": "string"}},
          "supporting_evidence": {"type": "array", "items": {"type": "string"}},
          "estimated_market_size": {"type": "string"}
        }
      }
    },
    "prioritization": {"type": "object"},
    "cross_niche_insights": {"type": "array", "items": {"type": "string"}},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 10},
    "research_sources": {"type": "array", "items": {"type": "string"}}
  }
}`

const businessModelSchemaDoc = `{
  "type": "object",
  "required": ["ideas", "confidence_score"],
  "properties": {
    "ideas": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["idea_name", "niche", "description", "workflow_design", "unique_value_prop", "monetization_strategy", "target_persona", "feasibility_score"],
        "properties": {
          "idea_name": {"type": "string"},
          "niche": {"type": "string"},
          "description": {"type": "string"},
          "workflow_design": {"type": "string"},
          "unique_value_prop": {"type": "string"},
          "monetization_strategy": {"type": "string"},
          "target_persona": {"type": "string"},
          "feasibility_score": {"type": "number", "minimum": 0, "maximum": 10},
          "supporting_evidence": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "recommended_idea": {"type": "string"},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 10}
  }
}`

const validationSchemaDoc = `{
  "type": "object",
  "required": ["research_summary", "key_opportunities", "research_quality_score", "next_steps_recommendation"],
  "properties": {
    "research_summary": {"type": "string"},
    "key_opportunities": {"type": "array", "items": {"type": "string"}},
    "research_quality_score": {"type": "number", "minimum": 0, "maximum": 10},
    "next_steps_recommendation": {"type": "string"}
  }
}`
