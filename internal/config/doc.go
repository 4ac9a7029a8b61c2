// Package config provides configuration parsing for lance projects.
//
// The configuration is stored in lance.json at the project root. Any field
// can be overridden from the environment (LANCE_PORT, LANCE_HOST, ...),
// which is how container deployments usually set it.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter-demo",
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000
//	  },
//	  "templates": {
//	    "dir": "templates",
//	    "s3Bucket": "my-templates",
//	    "s3Region": "eu-west-1",
//	    "s3Prefix": "views/",
//	    "escape": true
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "lance",
//	    "path": "/metrics"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
